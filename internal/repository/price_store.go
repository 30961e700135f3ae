package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
)

// ClickHousePriceStore implements PriceStore on coinsight.prices.
type ClickHousePriceStore struct {
	db    *sql.DB
	table string
}

// NewClickHousePriceStore creates the ClickHouse price store.
func NewClickHousePriceStore(db *sql.DB) domrepo.PriceStore {
	return &ClickHousePriceStore{db: db, table: "coinsight.prices"}
}

func (s *ClickHousePriceStore) StoreQuote(ctx context.Context, q *models.Quote) error {
	stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, market_cap, volume, change_24h, source) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, stmt,
		q.Timestamp,
		q.Symbol,
		q.Price,
		q.MarketCap,
		q.Volume24h,
		q.Change24hPc,
		"coingecko",
	)
	if err != nil {
		return fmt.Errorf("store quote: %w", err)
	}
	return nil
}

func (s *ClickHousePriceStore) StoreTicks(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(t.Timestamp, 0),
				t.Symbol,
				t.Price,
				0.0,
				t.Volume,
				0.0,
				"binance",
			)
		}
		if len(values) == 0 {
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, market_cap, volume, change_24h, source) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("store ticks: %w", err)
		}
	}
	return nil
}

func (s *ClickHousePriceStore) StoreHistory(ctx context.Context, symbol string, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, p := range points[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, p.Timestamp, symbol, p.Price, 0.0, 0.0, 0.0, "coingecko")
		}
		stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, market_cap, volume, change_24h, source) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("store history: %w", err)
		}
	}
	return nil
}

func (s *ClickHousePriceStore) LatestPrice(ctx context.Context, symbol string) (*models.Quote, error) {
	stmt := fmt.Sprintf("SELECT symbol, ts, price, market_cap, volume, change_24h FROM %s WHERE symbol = ? ORDER BY ts DESC LIMIT 1", s.table)
	row := s.db.QueryRowContext(ctx, stmt, symbol)

	var q models.Quote
	if err := row.Scan(&q.Symbol, &q.Timestamp, &q.Price, &q.MarketCap, &q.Volume24h, &q.Change24hPc); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest price: %w", err)
	}
	return &q, nil
}

func (s *ClickHousePriceStore) History(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	stmt := fmt.Sprintf("SELECT ts, price FROM %s WHERE symbol = ? AND ts >= ? ORDER BY ts ASC", s.table)
	rows, err := s.db.QueryContext(ctx, stmt, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("price history scan: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *ClickHousePriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHousePriceStore) Close() error {
	return nil // pool owned by pkg/clickhouse client
}
