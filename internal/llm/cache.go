package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// EmbeddingCache is the persistent content-addressed cache, keyed by the
// SHA-256 hex of the input text. Implemented by the Postgres store.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, contentHash string) ([]float32, bool, error)
	PutEmbedding(ctx context.Context, contentHash string, vec []float32) error
}

const (
	memCacheTTL     = time.Hour
	memCacheCleanup = 10 * time.Minute
)

// CachedEmbedder wraps an Embedder with two cache layers: an in-process
// TTL cache for hot texts and the persistent store for everything else.
// Identical text never reaches the embedding service twice within the
// cache lifetime.
//
// Cache read/write failures degrade to a plain upstream call; they are
// logged, never surfaced.
type CachedEmbedder struct {
	upstream Embedder
	db       EmbeddingCache
	mem      *gocache.Cache
	logger   *slog.Logger
}

// NewCachedEmbedder creates a CachedEmbedder. db may be nil, which
// disables the persistent layer (used by tests).
func NewCachedEmbedder(upstream Embedder, db EmbeddingCache, logger *slog.Logger) (*CachedEmbedder, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{
		upstream: upstream,
		db:       db,
		mem:      gocache.New(memCacheTTL, memCacheCleanup),
		logger:   logger,
	}, nil
}

// Embed returns the embedding for text, consulting the caches first.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)

	if v, ok := c.mem.Get(hash); ok {
		if vec, ok := v.([]float32); ok {
			return vec, nil
		}
	}

	if c.db != nil {
		vec, ok, err := c.db.GetEmbedding(ctx, hash)
		if err != nil {
			c.logger.Warn("embedding cache read failed", "error", err)
		} else if ok {
			c.mem.SetDefault(hash, vec)
			return vec, nil
		}
	}

	vec, err := c.upstream.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}

	c.mem.SetDefault(hash, vec)
	if c.db != nil {
		if err := c.db.PutEmbedding(ctx, hash, vec); err != nil {
			c.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return vec, nil
}

// ContentHash returns the cache key for the given text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
