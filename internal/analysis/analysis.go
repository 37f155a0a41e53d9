// Package analysis composes the AI-backed steps into the image analysis
// pipeline and tracks per-product store search state.
package analysis

import (
	"github.com/realprice/realprice/internal/lang"
	"github.com/realprice/realprice/internal/llm"
)

// IdentifiedObject is one identified object with its translations. The
// Translations map always contains an entry for every configured target
// language; an empty string means no translation was found, which is a
// valid terminal state, not an error.
type IdentifiedObject struct {
	Original     string               `json:"original"`
	Translations map[lang.Code]string `json:"translations"`
}

// StoreSearchState is the transient per-product state of a store lookup.
type StoreSearchState struct {
	Loading bool     `json:"isLoading"`
	Stores  []string `json:"stores,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Result is the aggregate outcome of one analysis run. Nil slices mean the
// corresponding stage was not reached; fields fill monotonically in stage
// order within a run and the whole value is replaced when a new run starts.
type Result struct {
	Objects           []IdentifiedObject          `json:"objects,omitempty"`
	RelatedProducts   []llm.ProductSearchResult   `json:"relatedProducts,omitempty"`
	ProductProperties []llm.ProductProperties     `json:"productProperties,omitempty"`
	StoreSearch       map[string]StoreSearchState `json:"storeSearch,omitempty"`
}

// alignTranslations matches translation records to the identified names
// by exact Original match and normalizes every record to the full target
// language key set. Names the translator dropped get all-empty
// translations, so the output length always equals len(names).
func alignTranslations(names []string, translated []llm.TranslatedObject, targets []lang.Code) []IdentifiedObject {
	byOriginal := make(map[string]llm.TranslatedObject, len(translated))
	for _, t := range translated {
		byOriginal[t.Original] = t
	}

	objects := make([]IdentifiedObject, 0, len(names))
	for _, name := range names {
		obj := IdentifiedObject{
			Original:     name,
			Translations: make(map[lang.Code]string, len(targets)),
		}
		for _, code := range targets {
			obj.Translations[code] = ""
		}
		if rec, ok := byOriginal[name]; ok && rec.Translations != nil {
			for _, code := range targets {
				// The model is told to use underscore keys ("pt_BR") but
				// may emit the hyphenated form; accept both.
				if v, ok := rec.Translations[code.Key()]; ok && v != "" {
					obj.Translations[code] = v
				} else if v, ok := rec.Translations[code.String()]; ok {
					obj.Translations[code] = v
				}
			}
		}
		objects = append(objects, obj)
	}
	return objects
}

// uniqueProducts flattens related-product lists into a de-duplicated
// slice, preserving first-seen order.
func uniqueProducts(results []llm.ProductSearchResult) []string {
	seen := make(map[string]bool)
	var products []string
	for _, r := range results {
		for _, p := range r.RelatedProducts {
			if !seen[p] {
				seen[p] = true
				products = append(products, p)
			}
		}
	}
	return products
}
