package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/domain"
)

// fixture is the on-disk shape served by the mock API. Details are keyed by
// product id and kept raw so malformed values can be exercised.
type fixture struct {
	Products []domain.ProductSummary    `json:"products"`
	Details  map[string]json.RawMessage `json:"details"`
}

// publishHours are the three daily issue times of generated products.
var publishHours = []int{6, 12, 18}

// snowfallSamples cycles through the value shapes the real API returns.
var snowfallSamples = []any{"2-4", "Trace", "1 to 3 in", nil, 5, "<1", "heavy"}

// generateFixture builds three products per day for days days, newest on the
// newest date. Every seventh product carries no zones and every eleventh has
// no metrics, so runs see both kinds of skip.
func generateFixture(days int, newest time.Time) fixture {
	fx := fixture{Details: map[string]json.RawMessage{}}
	id := int64(1000)
	n := 0
	for d := range days {
		day := newest.AddDate(0, 0, -d)
		for h := len(publishHours) - 1; h >= 0; h-- {
			id++
			n++
			published := time.Date(day.Year(), day.Month(), day.Day(), publishHours[h], 0, 0, 0, time.UTC)

			zones := []domain.ZoneRef{
				{ZoneID: "northwest_mountains", Name: "Northwest Mountains"},
				{ZoneID: "southeast_mountains", Name: "Southeast Mountains"},
			}
			if n%7 == 0 {
				zones = []domain.ZoneRef{{ZoneID: "front_range", Name: "Front Range"}}
			}
			fx.Products = append(fx.Products, domain.ProductSummary{
				ID:            id,
				PublishedTime: published.Format(time.RFC3339),
				ForecastZone:  zones,
			})

			detail := map[string]any{"id": id, "discussion": fmt.Sprintf("Generated forecast %d.", id)}
			if n%11 != 0 {
				detail["temperature"] = 10 + n%15
				detail["cloud_cover"] = "Mostly cloudy"
				detail["wind_speed"] = "15-25"
				detail["wind_direction"] = "SW"
				detail["snowfall_12hr"] = snowfallSamples[n%len(snowfallSamples)]
				detail["snowfall_24hr"] = snowfallSamples[(n+3)%len(snowfallSamples)]
			}
			raw, _ := json.Marshal(detail) //nolint:errchkjson // plain map of scalars
			fx.Details[strconv.FormatInt(id, 10)] = raw
		}
	}
	return fx
}

// newHandler serves GET /products and GET /product/{id} like the public API.
// Product ids in failing answer 500.
func newHandler(fx fixture, center string, failing map[int64]bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("avalanche_center_id") != center || q.Get("product_type") != "weather" {
			writeJSON200(w, []domain.ProductSummary{})
			return
		}
		writeJSON200(w, fx.Products)
	})

	mux.HandleFunc("GET /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad product id", http.StatusBadRequest)
			return
		}
		if failing[id] {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		raw, ok := fx.Details[strconv.FormatInt(id, 10)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	})

	return mux
}

func writeJSON200(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort mock response
}
