// Package scene runs the generation pipeline: it turns scenario text into a
// composed prompt, serves repeated prompts from an in-memory cache, drives
// the completion provider through the retry layer, normalizes raw output,
// and tracks the lifecycle of the resulting scene across refinements.
package scene

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/skitlabs/lampoon/internal/observe"
)

// Key returns the cache key for the given text: the hex-encoded SHA-256
// digest. Identical text always yields an identical key.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Cache is a process-local get-or-compute store for generated scene text,
// keyed by [Key] of caller-supplied key text. Entries are never evicted: the
// cache lives for one interactive session, which bounds it by how many
// distinct prompts a user can issue in a sitting.
//
// Scenario and refinement results live in separate Cache instances; the
// namespace only labels metrics and logs, it is the separate instances that
// keep the two keyspaces disjoint.
//
// Thread-safe for concurrent use.
type Cache struct {
	namespace string
	metrics   *observe.Metrics

	mu      sync.Mutex
	entries map[string]string
}

// NewCache creates an empty Cache. A nil metrics falls back to
// [observe.DefaultMetrics].
func NewCache(namespace string, metrics *observe.Metrics) *Cache {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Cache{
		namespace: namespace,
		metrics:   metrics,
		entries:   make(map[string]string),
	}
}

// GetOrCompute returns the text stored under keyText when present, without
// invoking compute. On a miss it runs compute, stores the result on success,
// and returns it. Errors are never stored, so the next call with the same
// key computes again.
//
// compute runs outside the cache lock. Concurrent misses on the same key may
// therefore compute more than once (last write wins); the interactive driver
// is single-flight so this never happens in practice, and duplicated work is
// preferable to holding a lock across a network round-trip.
func (c *Cache) GetOrCompute(ctx context.Context, keyText string, compute func(context.Context) (string, error)) (text string, hit bool, err error) {
	key := Key(keyText)

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.metrics.RecordCacheLookup(ctx, c.namespace, true)
		return cached, true, nil
	}
	c.mu.Unlock()
	c.metrics.RecordCacheLookup(ctx, c.namespace, false)

	text, err = compute(ctx)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	c.entries[key] = text
	c.mu.Unlock()
	return text, false, nil
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
