package llm

import (
	"context"

	"github.com/realprice/realprice/internal/storage"
	"github.com/rs/zerolog/log"
)

// CachedIdentifier wraps an Identifier with sqlite caching keyed by image
// hash. Cache failures are logged and ignored; they never fail the call.
type CachedIdentifier struct {
	inner Identifier
	store storage.Store
}

// NewCachedIdentifier creates a cached identifier.
func NewCachedIdentifier(inner Identifier, store storage.Store) *CachedIdentifier {
	return &CachedIdentifier{inner: inner, store: store}
}

// IdentifyObjects implements the Identifier interface with caching.
func (c *CachedIdentifier) IdentifyObjects(ctx context.Context, imageData []byte, mimeType string) ([]string, error) {
	hash := HashImage(imageData, mimeType)

	if c.store != nil {
		cached, err := c.store.GetIdentificationCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check identification cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("identification cache hit")
			return cached, nil
		}
	}

	objects, err := c.inner.IdentifyObjects(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	// An empty result is cached too: "nothing in the image" is a stable
	// outcome, not a failure.
	if c.store != nil {
		if err := c.store.SetIdentificationCache(hash, objects); err != nil {
			log.Warn().Err(err).Msg("failed to cache identification result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached identification result")
		}
	}

	return objects, nil
}
