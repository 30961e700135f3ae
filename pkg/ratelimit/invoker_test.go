package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	b, _ := newTestBucket(10, 1)
	iv := NewInvoker("test", b)

	var sleeps []time.Duration
	iv.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	calls := 0
	op := func() (interface{}, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}

	res, ok := iv.Execute(op, 3, 100*time.Millisecond)
	if !ok {
		t.Fatalf("expected success")
	}
	if res != "ok" {
		t.Fatalf("unexpected result: %v", res)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(sleeps))
	}
	// Second wait must be strictly greater: base doubles, jitter is <= 10%.
	if sleeps[1] <= sleeps[0] {
		t.Fatalf("backoff not monotonic: %v then %v", sleeps[0], sleeps[1])
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	b, _ := newTestBucket(10, 1)
	iv := NewInvoker("test", b)
	iv.sleep = func(time.Duration) {}

	calls := 0
	op := func() (interface{}, error) {
		calls++
		return nil, errors.New("always")
	}

	res, ok := iv.Execute(op, 2, time.Millisecond)
	if ok || res != nil {
		t.Fatalf("expected failure, got %v %v", res, ok)
	}
	if calls != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", calls)
	}
}

func TestExecuteNoCapacityDoesNotRetry(t *testing.T) {
	b, _ := newTestBucket(1, 0) // no refill
	b.TryConsume(1)             // drain

	warned := false
	iv := NewInvoker("test", b,
		WithWaitTimeout(200*time.Millisecond),
		WithCapacityHook(func() { warned = true }),
	)

	calls := 0
	res, ok := iv.Execute(func() (interface{}, error) {
		calls++
		return "never", nil
	}, 3, time.Millisecond)

	if ok || res != nil {
		t.Fatalf("expected capacity failure")
	}
	if calls != 0 {
		t.Fatalf("operation must not run without a token, ran %d times", calls)
	}
	if !warned {
		t.Fatalf("capacity hook not called")
	}
}

func TestExecuteMinInterval(t *testing.T) {
	b, _ := newTestBucket(10, 10)

	var paced []time.Duration
	iv := NewInvoker("test", b, WithMinInterval(50*time.Millisecond))
	iv.sleep = func(d time.Duration) { paced = append(paced, d) }

	op := func() (interface{}, error) { return 1, nil }
	if _, ok := iv.Execute(op, 0, time.Millisecond); !ok {
		t.Fatalf("first call failed")
	}
	if _, ok := iv.Execute(op, 0, time.Millisecond); !ok {
		t.Fatalf("second call failed")
	}
	if len(paced) != 1 {
		t.Fatalf("expected one pacing sleep, got %d", len(paced))
	}
	if paced[0] <= 0 || paced[0] > 50*time.Millisecond {
		t.Fatalf("pacing sleep out of range: %v", paced[0])
	}
}
