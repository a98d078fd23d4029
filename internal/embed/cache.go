package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/abhisek/sqldrill/internal/cache"
)

// CachedEmbedder wraps an Embedder with a file cache. Question text is
// immutable in practice, so cached vectors stay valid for the full TTL.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.Cache
}

// WithCache wraps an embedder with caching. A nil cache returns the
// inner embedder unchanged.
func WithCache(inner Embedder, c *cache.Cache) Embedder {
	if c == nil {
		return inner
	}
	return &CachedEmbedder{inner: inner, cache: c}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embedKey(text)

	var vec []float32
	if e.cache.Get(key, &vec) && len(vec) > 0 {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, vec)
	return vec, nil
}

func embedKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}
