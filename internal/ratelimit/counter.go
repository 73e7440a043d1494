package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter is a shared sliding-window request counter. Incr records one hit
// for the key and returns how many hits fall inside the window, atomically
// with respect to concurrent callers of the same key.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// MemoryCounter is an in-process Counter for single-instance deployments.
type MemoryCounter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewMemoryCounter constructs an empty in-memory counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{hits: make(map[string][]time.Time)}
}

// Incr prunes hits outside the window, records the new one, and returns the
// in-window count.
func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	kept := c.hits[key][:0]
	for _, hit := range c.hits[key] {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}
	kept = append(kept, now)
	c.hits[key] = kept

	return int64(len(kept)), nil
}
