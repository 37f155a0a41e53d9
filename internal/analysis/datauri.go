package analysis

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MaxImageBytes is the largest accepted decoded image payload (5 MB).
const MaxImageBytes = 5 << 20

// ParseImageDataURI decodes a base64 image data URI
// ("data:image/jpeg;base64,...") into raw bytes and a MIME type.
func ParseImageDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI: no payload separator")
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %q", meta)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("unsupported media type: %q (expected an image)", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image payload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("image too large: %d bytes (max %d)", len(data), MaxImageBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}

	return data, mimeType, nil
}

// FormatImageDataURI encodes raw image bytes as a data URI.
func FormatImageDataURI(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
