package llm

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

// formatPrompt dedents and trims a prompt template before substituting
// arguments, so templates can stay indented alongside the code.
func formatPrompt(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

// bulletList renders items as a markdown-style bullet list for prompts.
func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// stripFences removes markdown code fences the model may wrap around JSON.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractObject extracts the first JSON object from a model response,
// tolerating markdown fences and chatty prefixes/suffixes.
func extractObject(text string) (string, error) {
	text = stripFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

// extractArray extracts the outermost JSON array from a model response.
// Returns false when the response contains no array.
func extractArray(text string) (string, bool) {
	text = stripFences(text)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
