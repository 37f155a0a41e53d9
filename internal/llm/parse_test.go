package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"plain":          {input: `{"objects": ["cat"]}`, want: `{"objects": ["cat"]}`},
		"fenced":         {input: "```json\n{\"objects\": []}\n```", want: `{"objects": []}`},
		"chatty":         {input: `Sure! Here is the result: {"objects": ["dog"]} Hope that helps.`, want: `{"objects": ["dog"]}`},
		"no object":      {input: "I could not identify anything.", wantErr: true},
		"reversed brace": {input: "} {", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := extractObject(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractArray(t *testing.T) {
	got, ok := extractArray("```json\n[{\"original\": \"cat\"}]\n```")
	require.True(t, ok)

	var parsed []TranslatedObject
	require.NoError(t, json.Unmarshal([]byte(got), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "cat", parsed[0].Original)

	_, ok = extractArray("no array here")
	assert.False(t, ok)
}

func TestFormatPrompt(t *testing.T) {
	got := formatPrompt(`
		Products:
		%s

		Respond with JSON.`, "- cat food")

	assert.Equal(t, "Products:\n- cat food\n\nRespond with JSON.", got)
}

func TestBulletList(t *testing.T) {
	assert.Equal(t, "- cat\n- bicycle", bulletList([]string{"cat", "bicycle"}))
	assert.Equal(t, "", bulletList(nil))
}

func TestHashImage(t *testing.T) {
	a := HashImage([]byte("data"), "image/png")
	b := HashImage([]byte("data"), "image/jpeg")
	c := HashImage([]byte("other"), "image/png")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, HashImage([]byte("data"), "image/png"))
	assert.Len(t, a, 64)
}
