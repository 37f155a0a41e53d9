package analysis

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageDataURI(t *testing.T) {
	data, mimeType, err := ParseImageDataURI(FormatImageDataURI([]byte("payload"), "image/png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestParseImageDataURIErrors(t *testing.T) {
	tests := map[string]string{
		"no data prefix":     "image/jpeg;base64,aGVsbG8=",
		"no separator":       "data:image/jpeg;base64",
		"not base64 encoded": "data:image/jpeg,hello",
		"not an image":       "data:text/plain;base64,aGVsbG8=",
		"invalid base64":     "data:image/jpeg;base64,!!!",
		"empty payload":      "data:image/jpeg;base64,",
	}

	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseImageDataURI(uri)
			assert.Error(t, err)
		})
	}
}

func TestParseImageDataURITooLarge(t *testing.T) {
	big := make([]byte, MaxImageBytes+1)
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(big)

	_, _, err := ParseImageDataURI(uri)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
