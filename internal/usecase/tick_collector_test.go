package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

type fakeStream struct {
	mu         sync.Mutex
	reconnects int
	tickCh     chan *models.Tick
	errCh      chan error
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		tickCh: make(chan *models.Tick, 8),
		errCh:  make(chan error, 1),
	}
}

func (s *fakeStream) Connect(ctx context.Context) error   { return nil }
func (s *fakeStream) Subscribe(ctx context.Context) error { return nil }
func (s *fakeStream) Close() error                        { return nil }
func (s *fakeStream) IsConnected() bool                   { return true }

func (s *fakeStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickCh, s.errCh
}

func (s *fakeStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.tickCh = make(chan *models.Tick, 8)
	s.errCh = make(chan error, 1)
	return nil
}

func (s *fakeStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

type tickRecordingStore struct {
	fakePriceStore
	mu    sync.Mutex
	ticks []*models.Tick
}

func (s *tickRecordingStore) StoreTicks(ctx context.Context, ticks []*models.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, ticks...)
	return nil
}

func (s *tickRecordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

// A dead read loop closes both stream channels; the collector must fall back
// to reconnecting instead of spinning on closed receives.
func TestConsumeReconnectsAfterChannelsClose(t *testing.T) {
	stream := newFakeStream()
	close(stream.tickCh)
	close(stream.errCh)

	store := &tickRecordingStore{}
	c := NewTickCollector(stream, NewTickWriter(store), noopMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for stream.reconnectCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("collector never reconnected after channel close")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The reacquired channels must carry ticks through to the store.
	stream.mu.Lock()
	tickCh := stream.tickCh
	stream.mu.Unlock()
	tickCh <- &models.Tick{Symbol: "BTCUSDT", Timestamp: time.Now().Unix(), Price: 100, Volume: 1}

	for store.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("tick from reconnected stream never stored")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConsumeReconnectsOnStreamError(t *testing.T) {
	stream := newFakeStream()
	store := &tickRecordingStore{}
	c := NewTickCollector(stream, NewTickWriter(store), noopMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.mu.Lock()
	errCh := stream.errCh
	stream.mu.Unlock()
	errCh <- context.DeadlineExceeded

	deadline := time.Now().Add(2 * time.Second)
	for stream.reconnectCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("collector never reconnected after stream error")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
