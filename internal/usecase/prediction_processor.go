package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
)

// PredictionProcessor routes produced predictions to the configured backend.
type PredictionProcessor struct {
	pub     drepo.Publisher
	store   drepo.PredictionStore
	metrics drepo.Metrics
	backend string
}

// NewPredictionProcessor creates a new PredictionProcessor instance.
func NewPredictionProcessor(
	pub drepo.Publisher,
	store drepo.PredictionStore,
	metrics drepo.Metrics,
	backend string,
) *PredictionProcessor {
	return &PredictionProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process persists or publishes a batch of predictions.
func (p *PredictionProcessor) Process(ctx context.Context, preds []*models.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, preds)
	case "clickhouse":
		err = p.store.StorePredictions(ctx, preds)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("prediction_process")
		return fmt.Errorf("process predictions: %w", err)
	}

	for _, pred := range preds {
		p.metrics.RecordPrediction(pred.Symbol, pred.Direction)
	}
	p.metrics.RecordLatency("prediction_process", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *PredictionProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
