package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const openaiModel = "gpt-4o-mini"

// GPT-4o mini pricing (per million tokens)
const (
	openaiInputPricePerMillion  = 0.15
	openaiOutputPricePerMillion = 0.60
)

// OpenAIIdentifier is an alternate object identification provider using
// OpenAI's vision-capable chat models. Only the identification step runs
// here; the text steps stay on Gemini.
type OpenAIIdentifier struct {
	client openai.Client
}

// NewOpenAIIdentifier creates an OpenAI-based identifier with the given
// API key.
func NewOpenAIIdentifier(apiKey string) *OpenAIIdentifier {
	return &OpenAIIdentifier{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

// IdentifyObjects implements the Identifier interface using OpenAI.
func (o *OpenAIIdentifier) IdentifyObjects(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	// Encode image as base64 data URL
	b64Data := base64.StdEncoding.EncodeToString(imageData)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, b64Data)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(identifyObjectsPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := resp.Choices[0].Message.Content
	jsonText, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Objects []string `json:"objects"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse objects JSON: %w (response: %s)", err, jsonText)
	}

	cost := calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, openaiInputPricePerMillion, openaiOutputPricePerMillion)
	log.Info().
		Str("model", openaiModel).
		Int64("inputTokens", resp.Usage.PromptTokens).
		Int64("outputTokens", resp.Usage.CompletionTokens).
		Float64("costUSD", cost).
		Msg("object identification llm call")

	return parsed.Objects, nil
}
