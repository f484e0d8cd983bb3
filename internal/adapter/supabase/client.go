package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/domain"
)

const (
	forecastTable    = "weather_forecasts"
	forecastConflict = "zone_id,forecast_date"
)

// Client writes forecast records through the Supabase REST (PostgREST) API
// using the service role key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Supabase REST client for the project at baseURL.
func NewClient(baseURL, serviceKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// UpsertForecast inserts the record, or overwrites the existing row with the
// same (zone_id, forecast_date).
func (c *Client) UpsertForecast(ctx context.Context, rec domain.ForecastRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode forecast %s: %w", rec.Key(), err)
	}

	params := url.Values{"on_conflict": {forecastConflict}}
	u := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, forecastTable, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert forecast %s: %w", rec.Key(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("supabase API error: status %d: %s", resp.StatusCode, msg)
	}
	c.logger.Debug("forecast upserted", "zone", rec.ZoneID, "forecast_date", rec.ForecastDate)
	return nil
}

// Ping checks that the REST endpoint is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/rest/v1/%s?select=zone_id&limit=1", c.baseURL, forecastTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping supabase: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping supabase: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}
