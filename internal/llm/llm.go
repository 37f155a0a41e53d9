// Package llm wraps the AI-backed analysis steps: object identification,
// batch translation, related-product search and property extraction. Each
// step is one prompt with a JSON output contract.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/realprice/realprice/internal/lang"
)

// TranslatedObject is one object name with its translations as returned by
// the translation step. Translation keys are the JSON key form of language
// codes ("es", "pt_BR"); coverage is best-effort and may be a subset of the
// requested languages.
type TranslatedObject struct {
	Original     string            `json:"original"`
	Translations map[string]string `json:"translations"`
}

// ProductSearchResult lists the consumer products related to one identified
// object. Objects without related products are not represented.
type ProductSearchResult struct {
	ObjectName      string   `json:"objectName"`
	RelatedProducts []string `json:"relatedProducts"`
}

// ProductProperties lists descriptive properties for one product.
type ProductProperties struct {
	Product    string   `json:"product"`
	Properties []string `json:"properties"`
}

// Usage contains token usage and cost information for one model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Identifier identifies objects in an image, returning English names.
// An empty list is a valid outcome (nothing recognizable in the image).
type Identifier interface {
	IdentifyObjects(ctx context.Context, imageData []byte, mimeType string) ([]string, error)
}

// Translator translates object names into the target languages.
type Translator interface {
	TranslateObjects(ctx context.Context, names []string, targets []lang.Code) ([]TranslatedObject, error)
}

// ProductSearcher finds consumer products related to identified objects.
type ProductSearcher interface {
	SearchRelatedProducts(ctx context.Context, objects []string) ([]ProductSearchResult, error)
}

// PropertyExtractor extracts descriptive properties for a product batch.
type PropertyExtractor interface {
	ExtractProductProperties(ctx context.Context, products []string) ([]ProductProperties, error)
}

// HashImage returns a stable hex digest for an image payload, used as the
// identification cache key and the run history key.
func HashImage(imageData []byte, mimeType string) string {
	h := sha256.New()
	h.Write([]byte(mimeType))
	h.Write([]byte{0})
	h.Write(imageData)
	return hex.EncodeToString(h.Sum(nil))
}
