package ratelimit

import (
	"sync"
	"time"
)

// pollInterval is how often WaitAndConsume re-checks the bucket.
const pollInterval = 100 * time.Millisecond

// Bucket is a token bucket bounding the call rate to one upstream.
// Tokens refill continuously at refillRate per second up to capacity.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewBucket creates a full bucket.
func NewBucket(capacity, refillPerSec float64) *Bucket {
	return &Bucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillPerSec,
		last:       time.Now(),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// PerMinute is a convenience for upstream quotas expressed as calls per minute.
func PerMinute(perMinute, capacity float64) *Bucket {
	return NewBucket(capacity, perMinute/60.0)
}

// TryConsume refills based on elapsed time, then consumes n tokens if
// available. Refill and consume are one critical section; tokens never go
// negative and never exceed capacity.
func (b *Bucket) TryConsume(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	return false
}

// WaitAndConsume polls TryConsume until success or maxWait elapses.
// Returns false on timeout.
func (b *Bucket) WaitAndConsume(n float64, maxWait time.Duration) bool {
	deadline := b.now().Add(maxWait)
	for {
		if b.TryConsume(n) {
			return true
		}
		if !b.now().Before(deadline) {
			return false
		}
		b.sleep(pollInterval)
	}
}

// Tokens returns the current token count after refill.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}

func (b *Bucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
}
