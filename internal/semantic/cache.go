package semantic

import (
	"context"
	"fmt"
	"sync"

	"github.com/wgomg/aura/internal/utils"
)

// Store persists embeddings across restarts, keyed by text.
type Store interface {
	GetMany(texts []string) (map[string][]float32, error)
	PutMany(entries map[string][]float32) error
}

type CacheStats struct {
	Size    int
	Hits    int
	Misses  int
	HitRate float64
}

// CachedEncoder remembers every embedding its inner encoder produced for
// the process lifetime, backed by an optional persistent Store. It is meant
// for the fixed corpus phrases; free-text queries go through Unwrap.
type CachedEncoder struct {
	logger *utils.Logger
	inner  Encoder
	store  Store

	mu     sync.RWMutex
	items  map[string]Embedding
	hits   int
	misses int
}

func NewCachedEncoder(logger *utils.Logger, inner Encoder, store Store) *CachedEncoder {
	return &CachedEncoder{
		logger: logger,
		inner:  inner,
		store:  store,
		items:  make(map[string]Embedding),
	}
}

func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	reqID := utils.RequestID(ctx)
	missing := c.lookup(texts)

	if len(missing) > 0 && c.store != nil {
		stored, err := c.store.GetMany(missing)
		if err != nil {
			c.logger.Error(reqID, "Embedding store read failed: %v", err)
		} else if len(stored) > 0 {
			c.add(stored)
			missing = without(missing, stored)
			c.logger.Debug(reqID, "Loaded %d embeddings from store", len(stored))
		}
	}

	if len(missing) > 0 {
		vecs, err := c.inner.Encode(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missing) {
			return nil, fmt.Errorf("encoder returned %d embeddings for %d texts", len(vecs), len(missing))
		}

		fresh := make(map[string][]float32, len(missing))
		for i, text := range missing {
			fresh[text] = vecs[i]
		}
		c.add(fresh)

		if c.store != nil {
			if err := c.store.PutMany(fresh); err != nil {
				c.logger.Error(reqID, "Embedding store write failed: %v", err)
			}
		}
	}

	return c.collect(texts)
}

// lookup counts hits and misses and returns the distinct texts not in memory.
func (c *CachedEncoder) lookup(texts []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	missing := []string{}
	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		if _, exists := c.items[text]; !exists {
			c.misses++
			if !seen[text] {
				seen[text] = true
				missing = append(missing, text)
			}
			continue
		}
		c.hits++
	}
	return missing
}

func (c *CachedEncoder) add(entries map[string][]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for text, vec := range entries {
		c.items[text] = Embedding(vec)
	}
}

func (c *CachedEncoder) collect(texts []string) ([]Embedding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Embedding, len(texts))
	for i, text := range texts {
		vec, ok := c.items[text]
		if !ok {
			return nil, fmt.Errorf("embedding for %q missing after encode", utils.Truncate(text, 40))
		}
		out[i] = append(Embedding(nil), vec...)
	}
	return out, nil
}

func (c *CachedEncoder) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
	if c.hits+c.misses > 0 {
		stats.HitRate = float64(c.hits) / float64(c.hits+c.misses)
	}
	return stats
}

// Unwrap returns the encoder underneath the cache.
func (c *CachedEncoder) Unwrap() Encoder {
	return c.inner
}

func (c *CachedEncoder) Close() error {
	return Close(c.inner)
}

func without(texts []string, found map[string][]float32) []string {
	rest := texts[:0:0]
	for _, text := range texts {
		if _, ok := found[text]; !ok {
			rest = append(rest, text)
		}
	}
	return rest
}
