package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
)

// ClickHouseSentimentStore implements SentimentStore on coinsight.news_sentiment.
type ClickHouseSentimentStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSentimentStore creates the ClickHouse sentiment store.
func NewClickHouseSentimentStore(db *sql.DB) domrepo.SentimentStore {
	return &ClickHouseSentimentStore{db: db, table: "coinsight.news_sentiment"}
}

func (s *ClickHouseSentimentStore) StoreRecord(ctx context.Context, r *models.SentimentRecord) error {
	stmt := fmt.Sprintf("INSERT INTO %s (ts, title, source, url, category, category_weight, lexical_score, model_score, model_reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, stmt,
		r.Timestamp,
		r.Title,
		r.Source,
		r.URL,
		r.Category,
		r.CategoryWeight,
		r.LexicalScore,
		r.ModelScore,
		r.ModelReason,
	)
	if err != nil {
		return fmt.Errorf("store sentiment record: %w", err)
	}
	return nil
}

func (s *ClickHouseSentimentStore) Window(ctx context.Context, since, until time.Time) ([]models.SentimentRecord, error) {
	stmt := fmt.Sprintf("SELECT ts, title, source, url, category, category_weight, lexical_score, model_score, model_reason FROM %s WHERE ts >= ? AND ts < ? ORDER BY ts ASC", s.table)
	rows, err := s.db.QueryContext(ctx, stmt, since, until)
	if err != nil {
		return nil, fmt.Errorf("sentiment window: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *ClickHouseSentimentStore) Recent(ctx context.Context, limit int) ([]models.SentimentRecord, error) {
	stmt := fmt.Sprintf("SELECT ts, title, source, url, category, category_weight, lexical_score, model_score, model_reason FROM %s ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sentiment: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.SentimentRecord, error) {
	var records []models.SentimentRecord
	for rows.Next() {
		var r models.SentimentRecord
		var model sql.NullFloat64
		if err := rows.Scan(&r.Timestamp, &r.Title, &r.Source, &r.URL, &r.Category, &r.CategoryWeight, &r.LexicalScore, &model, &r.ModelReason); err != nil {
			return nil, fmt.Errorf("sentiment scan: %w", err)
		}
		if model.Valid {
			v := model.Float64
			r.ModelScore = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *ClickHouseSentimentStore) Close() error {
	return nil // pool owned by pkg/clickhouse client
}
