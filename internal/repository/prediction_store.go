package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
)

// ClickHousePredictionStore implements PredictionStore on coinsight.predictions.
type ClickHousePredictionStore struct {
	db    *sql.DB
	table string
}

// NewClickHousePredictionStore creates the ClickHouse prediction store.
func NewClickHousePredictionStore(db *sql.DB) domrepo.PredictionStore {
	return &ClickHousePredictionStore{db: db, table: "coinsight.predictions"}
}

func (s *ClickHousePredictionStore) StorePredictions(ctx context.Context, preds []*models.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	values := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds)*12)
	for _, p := range preds {
		if p == nil {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			p.PredictedAt,
			p.Symbol,
			int32(p.HorizonDays),
			p.CurrentPrice,
			p.PredictedPrice,
			p.Direction,
			p.Confidence,
			p.SentimentContribution,
			p.TechnicalContribution,
			boolToUInt8(p.UsedModelSentiment),
			boolToUInt8(p.UsedTechnical),
			p.TargetDate,
		)
	}
	if len(values) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("INSERT INTO %s (created_at, symbol, horizon_days, current_price, predicted_price, direction, confidence, sentiment_contribution, technical_contribution, used_model, used_technical, target_date) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store predictions: %w", err)
	}
	return nil
}

func (s *ClickHousePredictionStore) Close() error {
	return nil // pool owned by pkg/clickhouse client
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
