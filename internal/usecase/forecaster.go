package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	drepo "CoinSight/internal/domain/repository"
	dservice "CoinSight/internal/domain/service"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/services/indicators"
	"CoinSight/internal/services/prediction"
	"CoinSight/internal/services/sentiment"
	"CoinSight/pkg/cache"
	applogger "CoinSight/pkg/logger"
)

// quoteMaxAge is how stale a stored quote may be before the REST upstream
// is consulted again.
const quoteMaxAge = 15 * time.Minute

// Forecaster runs the evaluate pipeline for one symbol: price inputs from
// store or REST, sentiment windows from the store, indicators, fusion and
// per-horizon predictions. Finished sets are cached and handed to the
// processor for persistence.
type Forecaster struct {
	prices     dservice.PriceSource
	priceStore drepo.PriceStore
	sentStore  drepo.SentimentStore
	processor  *PredictionProcessor
	cache      cache.Service
	metrics    drepo.Metrics
	l          *applogger.Logger

	horizons    []int
	historyDays int
	cacheTTL    time.Duration

	now func() time.Time
}

// NewForecaster creates a Forecaster.
func NewForecaster(
	prices dservice.PriceSource,
	priceStore drepo.PriceStore,
	sentStore drepo.SentimentStore,
	processor *PredictionProcessor,
	cacheSvc cache.Service,
	metrics drepo.Metrics,
	l *applogger.Logger,
	horizons []int,
	historyDays int,
	cacheTTL time.Duration,
) *Forecaster {
	if historyDays <= 0 {
		historyDays = 90
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Forecaster{
		prices:      prices,
		priceStore:  priceStore,
		sentStore:   sentStore,
		processor:   processor,
		cache:       cacheSvc,
		metrics:     metrics,
		l:           l,
		horizons:    horizons,
		historyDays: historyDays,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// Forecast produces the full prediction set for a symbol. An insufficient
// price history degrades to a sentiment-only forecast; only a total absence
// of price data yields an error.
func (f *Forecaster) Forecast(ctx context.Context, symbol string) (*models.PredictionSet, error) {
	start := f.now()
	key := cache.GenerateKey("forecast", symbol)

	var cached models.PredictionSet
	if err := f.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	quote, err := f.currentQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	history, err := f.History(ctx, symbol, f.historyDays)
	if err != nil {
		f.l.Warn("price history unavailable, technical signal absent",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		history = nil
	}

	verdict := indicators.Compute(symbol, history)
	fused := sentiment.Fuse(f.sentimentWindow(ctx), start)

	set := prediction.Evaluate(symbol, quote.Price, verdict, fused, f.horizons, start)

	preds := make([]*models.Prediction, 0, len(set.Predictions))
	for _, days := range f.horizons {
		if p, ok := set.Predictions[days]; ok {
			preds = append(preds, p)
		}
	}
	if err := f.processor.Process(ctx, preds); err != nil {
		// persistence failure does not invalidate the forecast itself
		f.l.Error("prediction persistence failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}

	if err := f.cache.Set(ctx, key, set, f.cacheTTL); err != nil {
		f.l.Warn("forecast cache set failed", applogger.Error(err))
	}

	f.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	return set, nil
}

// Indicators computes the technical verdict over the last days of history.
// Returns nil when there are fewer than indicators.MinPoints points.
func (f *Forecaster) Indicators(ctx context.Context, symbol string, days int) (*models.SignalVerdict, error) {
	history, err := f.History(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	return indicators.Compute(symbol, history), nil
}

// Sentiment returns the current fused sentiment signal.
func (f *Forecaster) Sentiment(ctx context.Context) models.FusedSentiment {
	return sentiment.Fuse(f.sentimentWindow(ctx), f.now())
}

// RecentNews returns the latest stored sentiment records.
func (f *Forecaster) RecentNews(ctx context.Context, limit int) ([]models.SentimentRecord, error) {
	return f.sentStore.Recent(ctx, limit)
}

// History serves price points from the store, falling back to the REST
// upstream (and backfilling the store) when stored data is too thin for
// the indicator engine.
func (f *Forecaster) History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	since := f.now().AddDate(0, 0, -days)

	points, err := f.priceStore.History(ctx, symbol, since)
	if err != nil {
		f.metrics.RecordError("history_store")
		points = nil
	}
	if len(points) >= indicators.MinPoints {
		return points, nil
	}

	fetched, err := f.prices.PriceHistory(ctx, symbol, days)
	if err != nil {
		f.metrics.RecordUpstreamCall("coingecko", "error")
		if len(points) > 0 {
			return points, nil
		}
		return nil, fmt.Errorf("price history %s: %w", symbol, err)
	}
	f.metrics.RecordUpstreamCall("coingecko", "success")
	sort.Slice(fetched, func(i, j int) bool { return fetched[i].Timestamp.Before(fetched[j].Timestamp) })

	if err := f.priceStore.StoreHistory(ctx, symbol, fetched); err != nil {
		f.l.Warn("history backfill store failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	return fetched, nil
}

// CurrentQuote returns the freshest available quote for a symbol.
func (f *Forecaster) CurrentQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return f.currentQuote(ctx, symbol)
}

func (f *Forecaster) currentQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	stored, err := f.priceStore.LatestPrice(ctx, symbol)
	if err == nil && stored != nil && f.now().Sub(stored.Timestamp) < quoteMaxAge {
		return stored, nil
	}

	quote, err := f.prices.CurrentQuote(ctx, symbol)
	if err != nil {
		f.metrics.RecordUpstreamCall("coingecko", "error")
		if stored != nil {
			// stale beats absent
			return stored, nil
		}
		return nil, fmt.Errorf("current price %s: %w", symbol, err)
	}
	f.metrics.RecordUpstreamCall("coingecko", "success")

	if err := f.priceStore.StoreQuote(ctx, quote); err != nil {
		f.l.Warn("quote store failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	f.metrics.RecordLastPrice(symbol, quote.Price)
	return quote, nil
}

func (f *Forecaster) sentimentWindow(ctx context.Context) []models.SentimentRecord {
	now := f.now()
	records, err := f.sentStore.Window(ctx, now.Add(-sentiment.HistoricalWindow), now)
	if err != nil {
		// fusion degrades to zeros on an empty window
		f.metrics.RecordError("sentiment_window")
		f.l.Warn("sentiment window unavailable", applogger.Error(err))
		return nil
	}
	return records
}
