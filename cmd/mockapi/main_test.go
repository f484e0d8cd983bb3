package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/adapter/avalanche"
	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/couchcryptid/weather-backfill/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newest = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateFixture(t *testing.T) {
	fx := generateFixture(2, newest)

	require.Len(t, fx.Products, 6)
	assert.Len(t, fx.Details, 6)
	assert.Equal(t, "2024-01-15T18:00:00Z", fx.Products[0].PublishedTime)
	assert.Equal(t, "2024-01-14T06:00:00Z", fx.Products[5].PublishedTime)

	for _, p := range fx.Products {
		_, ok := fx.Details[strconv.FormatInt(p.ID, 10)]
		assert.True(t, ok, "detail for product %d", p.ID)
	}
}

func TestHandler_ServesClientRequests(t *testing.T) {
	fx := generateFixture(3, newest)
	srv := httptest.NewServer(newHandler(fx, "CBAC", map[int64]bool{fx.Products[1].ID: true}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := avalanche.NewClient(srv.URL, "CBAC", 5*time.Second, observability.NewMetricsForTesting(), logger)
	ctx := context.Background()

	products := client.ListWeatherProducts(ctx, 4)
	require.Len(t, products, 4)
	assert.Equal(t, fx.Products[0].ID, products[0].ID)

	detail, ok := client.GetProduct(ctx, products[0].ID)
	require.True(t, ok)
	w, err := domain.ParseWeather(detail)
	require.NoError(t, err)
	assert.False(t, w.Temperature.IsAbsent())

	_, ok = client.GetProduct(ctx, fx.Products[1].ID)
	assert.False(t, ok, "failing id answers 500")

	_, ok = client.GetProduct(ctx, 1)
	assert.False(t, ok, "unknown id answers 404")
}

func TestHandler_OtherCenterIsEmpty(t *testing.T) {
	srv := httptest.NewServer(newHandler(generateFixture(1, newest), "CBAC", nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/products?avalanche_center_id=CAIC&product_type=weather")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []domain.ProductSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Empty(t, got)
}

func TestLoadOrGenerate_RoundTripsDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock", "fixture.json")
	want := generateFixture(1, newest)
	require.NoError(t, writeJSON(path, want))

	got, err := loadOrGenerate(path, 0, "")
	require.NoError(t, err)
	assert.Equal(t, want.Products, got.Products)
	assert.Len(t, got.Details, len(want.Details))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1001, 1002,,")
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1001: true, 1002: true}, ids)

	_, err = parseIDs("abc")
	assert.Error(t, err)
}
