package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
)

type recordingSink struct {
	mu    sync.Mutex
	ticks []*models.Tick
	fail  bool
}

func (s *recordingSink) Process(ctx context.Context, t *models.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("store down")
	}
	s.ticks = append(s.ticks, t)
	return nil
}

func (s *recordingSink) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

type noopMetrics struct{}

func (noopMetrics) RecordUpstreamCall(api, result string)        {}
func (noopMetrics) RecordCapacityExhausted(api string)           {}
func (noopMetrics) RecordPrediction(symbol, direction string)    {}
func (noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (noopMetrics) RecordQueueDepth(queue string, depth int)     {}
func (noopMetrics) RecordError(kind string)                      {}
func (noopMetrics) RecordLatency(op string, seconds float64)     {}

func tick(symbol string, price float64) *models.Tick {
	return &models.Tick{Symbol: symbol, Timestamp: time.Now().Unix(), Price: price, Volume: 1}
}

func TestProcessRejectsInvalidTicks(t *testing.T) {
	sink := &recordingSink{}
	p := NewIngestPipeline(sink, noopMetrics{})

	cases := []*models.Tick{
		nil,
		{Symbol: "", Timestamp: 1, Price: 1, Volume: 1},
		{Symbol: "BTCUSDT", Timestamp: 0, Price: 1, Volume: 1},
		{Symbol: "BTCUSDT", Timestamp: 1, Price: 0, Volume: 1},
		{Symbol: "BTCUSDT", Timestamp: 1, Price: 1, Volume: -1},
	}
	for i, c := range cases {
		if err := p.Process(context.Background(), c); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if sink.count() != 0 {
		t.Fatalf("invalid ticks must not reach the sink")
	}
}

func TestProcessThrottlesPerSymbol(t *testing.T) {
	sink := &recordingSink{}
	p := NewIngestPipeline(sink, noopMetrics{}, WithMaxRPS(1))

	if err := p.Process(context.Background(), tick("BTCUSDT", 100)); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// same symbol inside the interval: dropped silently
	if err := p.Process(context.Background(), tick("BTCUSDT", 101)); err != nil {
		t.Fatalf("throttled tick must not error: %v", err)
	}
	// other symbols have their own window
	if err := p.Process(context.Background(), tick("ETHUSDT", 200)); err != nil {
		t.Fatalf("other symbol: %v", err)
	}

	if got := sink.count(); got != 2 {
		t.Fatalf("expected 2 delivered ticks, got %d", got)
	}
}

func TestProcessBuffersOnSinkFailureAndFlushes(t *testing.T) {
	sink := &recordingSink{}
	sink.setFail(true)
	p := NewIngestPipeline(sink, noopMetrics{}, WithBufferSize(10))

	if err := p.Process(context.Background(), tick("BTCUSDT", 100)); err == nil {
		t.Fatalf("expected downstream error")
	}
	if sink.count() != 0 {
		t.Fatalf("failed tick must not be recorded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	sink.setFail(false)
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered tick was never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
