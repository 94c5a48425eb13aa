// Package evalcache wraps an engine.Evaluator with an LRU cache keyed by
// normalized position. Games from the same player share openings heavily,
// so a modest cache removes a large share of engine calls in batch runs.
package evalcache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/fen"
	"github.com/discochess/gamereview/internal/stats"
)

// Compile-time check that Evaluator implements engine.Evaluator.
var _ engine.Evaluator = (*Evaluator)(nil)

// Cache is a bounded store of evaluations. It is safe for concurrent use,
// so one Cache may back the per-worker sessions of a whole batch.
type Cache struct {
	lru   *lru.Cache[string, engine.Evaluation]
	stats stats.Collector
}

// NewCache creates a cache holding up to size positions.
func NewCache(size int, collector stats.Collector) (*Cache, error) {
	c, err := lru.New[string, engine.Evaluation](size)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cache{lru: c, stats: collector}, nil
}

// Wrap decorates an evaluator with the cache.
func (c *Cache) Wrap(underlying engine.Evaluator) *Evaluator {
	return &Evaluator{underlying: underlying, cache: c}
}

// Evaluator is a caching decorator around another evaluator. Decorators
// sharing one Cache share its entries.
type Evaluator struct {
	underlying engine.Evaluator
	cache      *Cache
}

// Evaluate returns a cached evaluation when available, otherwise asks the
// underlying evaluator and caches its answer. Errors are never cached.
func (e *Evaluator) Evaluate(ctx context.Context, fenStr string) (*engine.Evaluation, error) {
	key := cacheKey(fenStr)

	if ev, ok := e.cache.lru.Get(key); ok {
		e.cache.stats.IncCounter(stats.MetricEvalCacheHits, 1)
		return &ev, nil
	}
	e.cache.stats.IncCounter(stats.MetricEvalCacheMisses, 1)

	ev, err := e.underlying.Evaluate(ctx, fenStr)
	if err != nil {
		return nil, err
	}

	e.cache.lru.Add(key, *ev)
	return ev, nil
}

// Close closes the underlying evaluator.
func (e *Evaluator) Close() error {
	return e.underlying.Close()
}

// cacheKey drops the move counters so transpositions reuse entries.
func cacheKey(fenStr string) string {
	if normalized, err := fen.Normalize(fenStr); err == nil {
		return normalized
	}
	return fenStr
}
