//go:build integration

package postgres

import "context"

// ExecForTesting runs a statement against the store's pool.
func ExecForTesting(ctx context.Context, s *Store, sql string) error {
	_, err := s.pool.Exec(ctx, sql)
	return err
}

// CountForTesting returns the number of rows stored for a key.
func CountForTesting(ctx context.Context, s *Store, zoneID, forecastDate string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM weather_forecasts WHERE zone_id = $1 AND forecast_date = $2::date`,
		zoneID, forecastDate,
	).Scan(&n)
	return n, err
}
