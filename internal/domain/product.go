package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ZoneRef is a forecast zone reference attached to a product.
type ZoneRef struct {
	ZoneID string `json:"zone_id"`
	Name   string `json:"name,omitempty"`
}

// ProductSummary is one entry of the product list endpoint.
type ProductSummary struct {
	ID            int64     `json:"id"`
	PublishedTime string    `json:"published_time"`
	ForecastZone  []ZoneRef `json:"forecast_zone"`
}

// ProductDetail is the full weather product returned by the product endpoint.
// Metric fields keep the raw JSON so numbers and strings can both be read as text.
type ProductDetail struct {
	ID            int64           `json:"id"`
	Temperature   json.RawMessage `json:"temperature"`
	CloudCover    json.RawMessage `json:"cloud_cover"`
	WindSpeed     json.RawMessage `json:"wind_speed"`
	WindDirection json.RawMessage `json:"wind_direction"`
	Snowfall12hr  json.RawMessage `json:"snowfall_12hr"`
	Snowfall24hr  json.RawMessage `json:"snowfall_24hr"`
	Discussion    json.RawMessage `json:"discussion"`
}

// Metrics is the fixed metrics shape stored with every forecast record.
// Absent fields serialize as null.
type Metrics struct {
	Temperature   Reading  `json:"temperature"`
	CloudCover    Reading  `json:"cloud_cover"`
	WindSpeed     Reading  `json:"wind_speed"`
	WindDirection Reading  `json:"wind_direction"`
	Snowfall12hr  Snowfall `json:"snowfall_12hr"`
	Snowfall24hr  Snowfall `json:"snowfall_24hr"`

	// Unparsed keeps snowfall text that is stored as null above, keyed by field name.
	Unparsed map[string]string `json:"unparsed,omitempty"`
}

// ForecastRecord is a row of the weather_forecasts table, unique per (ZoneID, ForecastDate).
type ForecastRecord struct {
	ZoneID       string  `json:"zone_id"`
	ForecastDate string  `json:"forecast_date"`
	Metrics      Metrics `json:"metrics"`
	RawText      string  `json:"raw_text"`
}

// Key returns the composite record key "zone_id|forecast_date".
func (r ForecastRecord) Key() string {
	return r.ZoneID + "|" + r.ForecastDate
}

// ForecastEvent announces that a forecast record was written by a backfill run.
type ForecastEvent struct {
	Record       ForecastRecord `json:"record"`
	BackfilledAt time.Time      `json:"backfilled_at"`
}

// NewForecastEvent wraps a saved record with the current clock time.
func NewForecastEvent(rec ForecastRecord) ForecastEvent {
	return ForecastEvent{Record: rec, BackfilledAt: Now().UTC()}
}

// ForecastDate returns the date part (first 10 characters) of a published timestamp.
func ForecastDate(published string) string {
	if len(published) > 10 {
		return published[:10]
	}
	return published
}

// rawText decodes a raw JSON scalar into text. Strings are trimmed; numbers and
// booleans keep their literal form. Null, missing and blank values are absent.
func rawText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), true
}
