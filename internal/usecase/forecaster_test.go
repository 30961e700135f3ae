package usecase

import (
	"context"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/pkg/cache"
	applogger "CoinSight/pkg/logger"
)

type fakePriceSource struct {
	quoteCalls   int
	historyCalls int
}

func (s *fakePriceSource) CurrentQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.quoteCalls++
	return &models.Quote{Symbol: symbol, Price: 50000, Timestamp: time.Now()}, nil
}

func (s *fakePriceSource) PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	s.historyCalls++
	base := time.Now().AddDate(0, 0, -days)
	points := make([]models.PricePoint, 60)
	for i := range points {
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Price:     40000 + float64(i)*100,
		}
	}
	return points, nil
}

type fakePriceStore struct {
	quotes  []*models.Quote
	history []models.PricePoint
}

func (s *fakePriceStore) StoreQuote(ctx context.Context, q *models.Quote) error {
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *fakePriceStore) StoreTicks(ctx context.Context, ticks []*models.Tick) error { return nil }

func (s *fakePriceStore) StoreHistory(ctx context.Context, symbol string, points []models.PricePoint) error {
	s.history = append(s.history, points...)
	return nil
}

func (s *fakePriceStore) LatestPrice(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, nil
}

func (s *fakePriceStore) History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	return nil, nil
}

func (s *fakePriceStore) Health(ctx context.Context) error { return nil }
func (s *fakePriceStore) Close() error                     { return nil }

type fakeSentimentStore struct {
	records []models.SentimentRecord
}

func (s *fakeSentimentStore) StoreRecord(ctx context.Context, r *models.SentimentRecord) error {
	s.records = append(s.records, *r)
	return nil
}

func (s *fakeSentimentStore) Window(ctx context.Context, since, until time.Time) ([]models.SentimentRecord, error) {
	return s.records, nil
}

func (s *fakeSentimentStore) Recent(ctx context.Context, limit int) ([]models.SentimentRecord, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

func (s *fakeSentimentStore) Close() error { return nil }

type fakePredictionStore struct {
	stored []*models.Prediction
}

func (s *fakePredictionStore) StorePredictions(ctx context.Context, preds []*models.Prediction) error {
	s.stored = append(s.stored, preds...)
	return nil
}

func (s *fakePredictionStore) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordUpstreamCall(api, result string)        {}
func (noopMetrics) RecordCapacityExhausted(api string)           {}
func (noopMetrics) RecordPrediction(symbol, direction string)    {}
func (noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (noopMetrics) RecordQueueDepth(queue string, depth int)     {}
func (noopMetrics) RecordError(kind string)                      {}
func (noopMetrics) RecordLatency(op string, seconds float64)     {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestForecaster(t *testing.T) (*Forecaster, *fakePriceSource, *fakePredictionStore) {
	t.Helper()

	source := &fakePriceSource{}
	predStore := &fakePredictionStore{}
	model := 5.0
	sentStore := &fakeSentimentStore{records: []models.SentimentRecord{
		{Timestamp: time.Now().Add(-time.Hour), LexicalScore: 0.4, ModelScore: &model, CategoryWeight: 1},
	}}

	proc := NewPredictionProcessor(nil, predStore, noopMetrics{}, "clickhouse")
	f := NewForecaster(
		source,
		&fakePriceStore{},
		sentStore,
		proc,
		cache.NewMemoryCache(),
		noopMetrics{},
		testLogger(t),
		[]int{1, 7, 30},
		90,
		time.Minute,
	)
	return f, source, predStore
}

func TestForecastProducesAllHorizons(t *testing.T) {
	f, _, predStore := newTestForecaster(t)

	set, err := f.Forecast(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(set.Predictions) != 3 {
		t.Fatalf("got %d predictions, want 3", len(set.Predictions))
	}
	for _, days := range []int{1, 7, 30} {
		p := set.Predictions[days]
		if p == nil {
			t.Fatalf("missing horizon %d", days)
		}
		if p.CurrentPrice != 50000 {
			t.Fatalf("horizon %d current price = %v", days, p.CurrentPrice)
		}
		if !p.UsedModelSentiment {
			t.Fatalf("horizon %d did not use model sentiment", days)
		}
		if !p.UsedTechnical {
			t.Fatalf("horizon %d did not use technicals despite 60 points", days)
		}
	}
	if len(predStore.stored) != 3 {
		t.Fatalf("persisted %d predictions, want 3", len(predStore.stored))
	}
	if set.Verdict == nil {
		t.Fatal("verdict missing with sufficient history")
	}
}

func TestForecastUsesCache(t *testing.T) {
	f, source, _ := newTestForecaster(t)

	if _, err := f.Forecast(context.Background(), "BTC"); err != nil {
		t.Fatalf("first forecast: %v", err)
	}
	if _, err := f.Forecast(context.Background(), "BTC"); err != nil {
		t.Fatalf("second forecast: %v", err)
	}
	if source.quoteCalls != 1 || source.historyCalls != 1 {
		t.Fatalf("upstream calls = %d/%d, want 1/1 with warm cache", source.quoteCalls, source.historyCalls)
	}
}

func TestForecastSentimentOnlyWithThinHistory(t *testing.T) {
	f, source, _ := newTestForecaster(t)
	// Serve fewer points than the indicator engine needs.
	short := &shortHistorySource{inner: source}
	f.prices = short

	set, err := f.Forecast(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if set.Verdict != nil {
		t.Fatal("verdict present despite thin history")
	}
	p := set.Predictions[7]
	if p.UsedTechnical || p.TechnicalContribution != 0 {
		t.Fatalf("technical contribution = %v with thin history", p.TechnicalContribution)
	}
	if p.SentimentContribution == 0 {
		t.Fatal("sentiment contribution missing")
	}
}

type shortHistorySource struct {
	inner *fakePriceSource
}

func (s *shortHistorySource) CurrentQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return s.inner.CurrentQuote(ctx, symbol)
}

func (s *shortHistorySource) PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	points, err := s.inner.PriceHistory(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	return points[:10], nil
}
