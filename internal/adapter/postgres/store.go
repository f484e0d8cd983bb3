package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by GetForecast when no row matches the key.
var ErrNotFound = errors.New("forecast not found")

const upsertForecastSQL = `
INSERT INTO weather_forecasts (zone_id, forecast_date, metrics, raw_text)
VALUES ($1, $2::date, $3::jsonb, $4)
ON CONFLICT (zone_id, forecast_date) DO UPDATE
SET metrics = EXCLUDED.metrics,
    raw_text = EXCLUDED.raw_text`

const getForecastSQL = `
SELECT zone_id, forecast_date::text, metrics::text, coalesce(raw_text, '')
FROM weather_forecasts
WHERE zone_id = $1 AND forecast_date = $2::date`

// Store writes forecast records straight to the weather_forecasts table.
// The table needs a unique constraint on (zone_id, forecast_date).
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pool to dsn. viaBouncer switches to the simple protocol for
// PgBouncer transaction pooling (the Supabase pooler on port 6543).
func Open(ctx context.Context, dsn string, maxConns int, viaBouncer bool) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 2
	}
	cfg.MaxConns = int32(maxConns)
	if viaBouncer {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// UpsertForecast inserts the record or overwrites metrics and raw text of the
// existing (zone_id, forecast_date) row.
func (s *Store) UpsertForecast(ctx context.Context, rec domain.ForecastRecord) error {
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics %s: %w", rec.Key(), err)
	}
	if _, err := s.pool.Exec(ctx, upsertForecastSQL, rec.ZoneID, rec.ForecastDate, string(metrics), rec.RawText); err != nil {
		return fmt.Errorf("upsert forecast %s: %w", rec.Key(), err)
	}
	return nil
}

// GetForecast reads back the record stored for a zone and date.
func (s *Store) GetForecast(ctx context.Context, zoneID, forecastDate string) (domain.ForecastRecord, error) {
	var (
		rec     domain.ForecastRecord
		metrics string
	)
	err := s.pool.QueryRow(ctx, getForecastSQL, zoneID, forecastDate).
		Scan(&rec.ZoneID, &rec.ForecastDate, &metrics, &rec.RawText)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ForecastRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ForecastRecord{}, fmt.Errorf("get forecast %s|%s: %w", zoneID, forecastDate, err)
	}
	if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
		return domain.ForecastRecord{}, fmt.Errorf("decode metrics %s: %w", rec.Key(), err)
	}
	return rec, nil
}

// Ping verifies a connection can be acquired.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pool connections.
func (s *Store) Close() {
	s.pool.Close()
}
