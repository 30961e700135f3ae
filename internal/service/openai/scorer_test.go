package openai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"CoinSight/pkg/queue"
)

func TestUnavailableScorerNeverTouchesDispatcher(t *testing.T) {
	d := queue.NewDispatcher("openai", 1, 4)
	defer d.Shutdown(true)

	s := New("", "gpt-3.5-turbo", time.Second, nil, d)
	if s.Available() {
		t.Fatalf("scorer without API key must be unavailable")
	}
	if _, ok := s.ScoreArticle(context.Background(), "title", "content", "source"); ok {
		t.Fatalf("unavailable scorer must return ok=false")
	}
}

func TestCloseDrainsQueuedWork(t *testing.T) {
	d := queue.NewDispatcher("openai", 1, 4)
	s := New("key", "gpt-3.5-turbo", time.Second, nil, d)

	var done atomic.Int32
	for i := 0; i < 3; i++ {
		err := d.Enqueue(func() (interface{}, error) {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil, nil
		}, nil)
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	// Close must block until the queue is drained, not abandon it.
	s.Close()
	if got := done.Load(); got != 3 {
		t.Fatalf("expected 3 drained tasks, got %d", got)
	}
}
