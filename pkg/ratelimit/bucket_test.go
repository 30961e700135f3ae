package ratelimit

import (
	"testing"
	"time"
)

// fakeClock advances only when sleep is called.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time        { return c.t }
func (c *fakeClock) sleep(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(capacity, refillPerSec float64) (*Bucket, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	b := NewBucket(capacity, refillPerSec)
	b.now = clk.now
	b.sleep = clk.sleep
	b.last = clk.t
	return b, clk
}

func TestBucketConsumeWithinBounds(t *testing.T) {
	b, clk := newTestBucket(5, 1)

	for i := 0; i < 5; i++ {
		if !b.TryConsume(1) {
			t.Fatalf("consume %d should succeed", i)
		}
		if got := b.Tokens(); got < 0 || got > 5 {
			t.Fatalf("tokens out of bounds: %v", got)
		}
	}
	if b.TryConsume(1) {
		t.Fatalf("empty bucket should reject")
	}
	if got := b.Tokens(); got < 0 {
		t.Fatalf("tokens went negative: %v", got)
	}

	// Refill must be capped at capacity even after a long idle period.
	clk.sleep(time.Hour)
	if got := b.Tokens(); got != 5 {
		t.Fatalf("expected full bucket after idle, got %v", got)
	}
}

func TestBucketRefillAfterFullPeriod(t *testing.T) {
	b, clk := newTestBucket(10, 2)

	if !b.TryConsume(10) {
		t.Fatalf("full-capacity consume should succeed on a fresh bucket")
	}
	// capacity/refill_rate = 5s to refill completely
	clk.sleep(5 * time.Second)
	if !b.TryConsume(10) {
		t.Fatalf("full-capacity consume should succeed after refill period")
	}
}

func TestBucketPartialRefill(t *testing.T) {
	b, clk := newTestBucket(4, 1)
	if !b.TryConsume(4) {
		t.Fatalf("initial consume failed")
	}

	clk.sleep(1500 * time.Millisecond)
	if b.TryConsume(2) {
		t.Fatalf("should only have ~1.5 tokens")
	}
	if !b.TryConsume(1) {
		t.Fatalf("single token should be available")
	}
}

func TestWaitAndConsume(t *testing.T) {
	b, clk := newTestBucket(1, 1)
	if !b.TryConsume(1) {
		t.Fatalf("initial consume failed")
	}

	// The fake sleep advances time, so one token appears within the wait.
	if !b.WaitAndConsume(1, 2*time.Second) {
		t.Fatalf("expected token within wait window")
	}

	// Ask for more than refills within maxWait.
	start := clk.t
	if b.WaitAndConsume(1, 500*time.Millisecond) {
		t.Fatalf("expected timeout")
	}
	if clk.t.Sub(start) > 2*time.Second {
		t.Fatalf("wait overshot the deadline: %v", clk.t.Sub(start))
	}
}
