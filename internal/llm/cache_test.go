package llm

import (
	"context"
	"testing"

	"github.com/medinaguide/medina/internal/log"
)

// countingEmbedder records how many times the upstream service is hit.
type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

// mapCache is an in-memory stand-in for the persistent cache.
type mapCache struct {
	data   map[string][]float32
	gets   int
	puts   int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]float32)} }

func (m *mapCache) GetEmbedding(_ context.Context, hash string) ([]float32, bool, error) {
	m.gets++
	v, ok := m.data[hash]
	return v, ok, nil
}

func (m *mapCache) PutEmbedding(_ context.Context, hash string, vec []float32) error {
	m.puts++
	m.data[hash] = vec
	return nil
}

func TestCachedEmbedder_Idempotent(t *testing.T) {
	upstream := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	ce, err := NewCachedEmbedder(upstream, newMapCache(), log.NewNop())
	if err != nil {
		t.Fatalf("NewCachedEmbedder() error = %v", err)
	}

	ctx := context.Background()
	first, err := ce.Embed(ctx, "health services in Rabat")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	second, err := ce.Embed(ctx, "health services in Rabat")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want exactly 1", upstream.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("vector lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at index %d", i)
		}
	}
}

func TestCachedEmbedder_DifferentTextsEmbedSeparately(t *testing.T) {
	upstream := &countingEmbedder{vec: []float32{1}}
	ce, _ := NewCachedEmbedder(upstream, newMapCache(), log.NewNop())

	ctx := context.Background()
	_, _ = ce.Embed(ctx, "stadiums in Casablanca")
	_, _ = ce.Embed(ctx, "tourist places in Fes")

	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", upstream.calls)
	}
}

func TestCachedEmbedder_PersistentLayerServesColdStart(t *testing.T) {
	db := newMapCache()
	db.data[ContentHash("cached text")] = []float32{0.5}

	upstream := &countingEmbedder{vec: []float32{0.9}}
	ce, _ := NewCachedEmbedder(upstream, db, log.NewNop())

	vec, err := ce.Embed(context.Background(), "cached text")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if upstream.calls != 0 {
		t.Errorf("upstream calls = %d, want 0 for a warm persistent cache", upstream.calls)
	}
	if len(vec) != 1 || vec[0] != 0.5 {
		t.Errorf("Embed() = %v, want cached [0.5]", vec)
	}
}

func TestContentHash_Stable(t *testing.T) {
	if ContentHash("abc") != ContentHash("abc") {
		t.Error("same text must hash identically")
	}
	if ContentHash("abc") == ContentHash("abd") {
		t.Error("different text must hash differently")
	}
	if len(ContentHash("x")) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(ContentHash("x")))
	}
}
