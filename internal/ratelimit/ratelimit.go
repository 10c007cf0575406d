// Package ratelimit paces outbound request bursts with a single token
// bucket, so bulk writers don't hammer the backend.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket refills one token per interval up to capacity. A zero interval
// disables pacing entirely.
type Bucket struct {
	mu       sync.Mutex
	capacity int
	interval time.Duration
	tokens   int
	last     time.Time
}

// NewBucket starts full with the given capacity, refilling one token per
// interval.
func NewBucket(capacity int, interval time.Duration) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	return &Bucket{
		capacity: capacity,
		interval: interval,
		tokens:   capacity,
		last:     time.Now(),
	}
}

// Allow takes a token if one is available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Wait blocks until a token is available or ctx is done.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.refill()
		if b.tokens > 0 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := b.interval - time.Since(b.last)
		b.mu.Unlock()

		if wait <= 0 {
			wait = time.Millisecond
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// refill credits elapsed intervals; callers hold b.mu.
func (b *Bucket) refill() {
	if b.interval <= 0 {
		b.tokens = b.capacity
		return
	}
	elapsed := time.Since(b.last)
	credit := int(elapsed / b.interval)
	if credit > 0 {
		b.tokens += credit
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = b.last.Add(time.Duration(credit) * b.interval)
	}
}
