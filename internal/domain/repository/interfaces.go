package repository

import (
	"context"
	"time"

	"CoinSight/internal/domain/models"
)

// MarketStream is a live price feed (WebSocket) for the configured symbols.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceStore persists and serves price history.
type PriceStore interface {
	StoreQuote(ctx context.Context, q *models.Quote) error
	StoreTicks(ctx context.Context, ticks []*models.Tick) error
	StoreHistory(ctx context.Context, symbol string, points []models.PricePoint) error
	LatestPrice(ctx context.Context, symbol string) (*models.Quote, error)
	History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error)
	Health(ctx context.Context) error
	Close() error
}

// SentimentStore persists and serves scored news articles.
type SentimentStore interface {
	StoreRecord(ctx context.Context, r *models.SentimentRecord) error
	Window(ctx context.Context, since, until time.Time) ([]models.SentimentRecord, error)
	Recent(ctx context.Context, limit int) ([]models.SentimentRecord, error)
	Close() error
}

// PredictionStore persists produced predictions for later accuracy review.
type PredictionStore interface {
	StorePredictions(ctx context.Context, preds []*models.Prediction) error
	Close() error
}

// Publisher pushes produced predictions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, p *models.Prediction) error
	PublishBatch(ctx context.Context, preds []*models.Prediction) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordUpstreamCall(api, result string)
	RecordCapacityExhausted(api string)
	RecordPrediction(symbol, direction string)
	RecordLastPrice(symbol string, price float64)
	RecordQueueDepth(queue string, depth int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
