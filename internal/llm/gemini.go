package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/realprice/realprice/internal/lang"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	geminiVisionModel = "gemini-2.0-flash"
	geminiTextModel   = "gemini-2.0-flash-lite"
)

// Gemini pricing (per million tokens)
const (
	geminiVisionInputPricePerMillion  = 0.10
	geminiVisionOutputPricePerMillion = 0.40
	geminiTextInputPricePerMillion    = 0.075
	geminiTextOutputPricePerMillion   = 0.30
)

const identifyObjectsPrompt = `You are an expert in computer vision. You will identify the objects in the image.
Return a list of object names in English.

List the objects identified in the image. Respond with a JSON object containing a single key "objects", which is an array of strings.
Example: {"objects": ["cat", "table", "plant"]}

Respond ONLY with the JSON object, no markdown or other text.`

const translateObjectsPrompt = `
	You are an expert multilingual translator.
	Your task is to translate a list of object names from English into a specified list of target languages.

	Input Object Names (English):
	%s

	Target Language Codes: %s
	(Language codes example: "es" for Spanish, "fr" for French, "de" for German, "zh" for Chinese Simplified, "ja" for Japanese, "pt-BR" for Portuguese (Brazil), "pt-PT" for Portuguese (Portugal))

	Provide the output as a JSON array. Each object in the array corresponds to an original English object name and must contain:
	1. An "original" field: a string with the original English object name.
	2. A "translations" field: an object where keys are the target language codes (use underscore for regional variants in JSON keys, e.g. "pt_BR", "pt_PT") and values are the translated names.

	Example for input ["cat", "dog"] and target codes ["es", "pt-BR"]:
	[
	  {"original": "cat", "translations": {"es": "gato", "pt_BR": "gato"}},
	  {"original": "dog", "translations": {"es": "perro", "pt_BR": "cachorro"}}
	]

	If a translation for a specific language cannot be found, omit that language key from the "translations" object for that item.
	Respond ONLY with the JSON array, no markdown or other text.`

const searchRelatedProductsPrompt = `
	You are an AI assistant that helps users find consumer products related to objects identified in an image.

	Given the following list of objects, for each object, provide its name and a list of related products.
	Only include objects in the result if related products are found.

	Objects:
	%s

	Respond with a JSON object containing a single key "searchResults": an array of objects, each with:
	1. "objectName": (string) the name of the identified object.
	2. "relatedProducts": (array of strings) products related to this object.
	If no products are found for an object, do not include that object in "searchResults".
	If no products are found for any object, return {"searchResults": []}.

	Example for input ["expensive car", "tree", "unknown object"]:
	{
	  "searchResults": [
	    {"objectName": "expensive car", "relatedProducts": ["Luxury Sedan Model X", "High-Performance SUV Y"]},
	    {"objectName": "tree", "relatedProducts": ["Gardening Shovel", "Plant Fertilizer", "Outdoor Bench"]}
	  ]
	}

	Respond ONLY with the JSON object, no markdown or other text.`

const extractPropertiesPrompt = `
	You are an expert product analyst. Given a list of products, you will identify key properties for each product.

	Products:
	%s

	For each product, list at least three key properties, such as "color", "size", "material", "brand".

	Respond with a JSON array, one object per input product, each with:
	1. "product": (string) the product name exactly as given.
	2. "properties": (array of strings) key properties of the product.

	Example:
	[
	  {"product": "Luxury Sedan Model X", "properties": ["color", "engine type", "brand"]}
	]

	Respond ONLY with the JSON array, no markdown or other text.`

// GeminiClient implements all four AI analysis steps over the Gemini API.
// The vision step runs on the flash model, text steps on the lite model.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini-backed step client with the given API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// IdentifyObjects implements the Identifier interface using Gemini vision.
func (g *GeminiClient) IdentifyObjects(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(identifyObjectsPrompt),
		{InlineData: &genai.Blob{Data: imageData, MIMEType: mimeType}},
	}

	text, err := g.generate(ctx, geminiVisionModel, parts, "object identification llm call")
	if err != nil {
		return nil, err
	}

	jsonText, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Objects []string `json:"objects"`
	}
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse objects JSON: %w (response: %s)", err, jsonText)
	}
	return resp.Objects, nil
}

// TranslateObjects implements the Translator interface. Coverage is
// best-effort: the model may drop names or language keys, and the result
// may be nil when it produces nothing usable at all.
func (g *GeminiClient) TranslateObjects(ctx context.Context, names []string, targets []lang.Code) ([]TranslatedObject, error) {
	if len(names) == 0 {
		return nil, nil
	}

	codes := make([]string, len(targets))
	for i, c := range targets {
		codes[i] = c.String()
	}

	prompt := formatPrompt(translateObjectsPrompt, bulletList(names), strings.Join(codes, ", "))

	text, err := g.generateText(ctx, prompt, "batch translation llm call")
	if err != nil {
		return nil, err
	}

	jsonText, ok := extractArray(text)
	if !ok {
		// The model returned no JSON array at all. Treat as "no
		// translations found"; the orchestrator synthesizes empty records.
		log.Warn().Str("response", text).Msg("translation response contained no JSON array")
		return nil, nil
	}

	var translated []TranslatedObject
	if err := json.Unmarshal([]byte(jsonText), &translated); err != nil {
		return nil, fmt.Errorf("failed to parse translations JSON: %w (response: %s)", err, jsonText)
	}
	return translated, nil
}

// SearchRelatedProducts implements the ProductSearcher interface. Only
// objects with at least one related product appear in the result.
func (g *GeminiClient) SearchRelatedProducts(ctx context.Context, objects []string) ([]ProductSearchResult, error) {
	if len(objects) == 0 {
		return nil, nil
	}

	prompt := formatPrompt(searchRelatedProductsPrompt, bulletList(objects))

	text, err := g.generateText(ctx, prompt, "related product search llm call")
	if err != nil {
		return nil, err
	}

	jsonText, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	var resp struct {
		SearchResults []ProductSearchResult `json:"searchResults"`
	}
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search results JSON: %w (response: %s)", err, jsonText)
	}
	return resp.SearchResults, nil
}

// ExtractProductProperties implements the PropertyExtractor interface.
func (g *GeminiClient) ExtractProductProperties(ctx context.Context, products []string) ([]ProductProperties, error) {
	if len(products) == 0 {
		return nil, nil
	}

	prompt := formatPrompt(extractPropertiesPrompt, bulletList(products))

	text, err := g.generateText(ctx, prompt, "property extraction llm call")
	if err != nil {
		return nil, err
	}

	jsonText, ok := extractArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array found in properties response: %s", text)
	}

	var props []ProductProperties
	if err := json.Unmarshal([]byte(jsonText), &props); err != nil {
		return nil, fmt.Errorf("failed to parse properties JSON: %w (response: %s)", err, jsonText)
	}
	return props, nil
}

// generateText executes a text-only prompt on the lite model.
func (g *GeminiClient) generateText(ctx context.Context, prompt string, event string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	return g.generate(ctx, geminiTextModel, parts, event)
}

// generate executes the Gemini API call, logs usage and returns the raw
// response text.
func (g *GeminiClient) generate(ctx context.Context, model string, parts []*genai.Part, event string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		inPrice, outPrice := geminiTextInputPricePerMillion, geminiTextOutputPricePerMillion
		if model == geminiVisionModel {
			inPrice, outPrice = geminiVisionInputPricePerMillion, geminiVisionOutputPricePerMillion
		}
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateCost(usage.InputTokens, usage.OutputTokens, inPrice, outPrice)
	}

	log.Info().
		Str("model", model).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg(event)

	return result.Text(), nil
}

func calculateCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
