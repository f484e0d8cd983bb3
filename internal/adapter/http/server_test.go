package http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/weather-backfill/internal/adapter/http"
	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/couchcryptid/weather-backfill/internal/observability"
	"github.com/couchcryptid/weather-backfill/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type mockBackfill struct {
	err      error
	progress pipeline.Summary
}

func (m *mockBackfill) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockBackfill) Progress() pipeline.Summary { return m.progress }

func newTestServer(b *mockBackfill) *httpadapter.Server {
	return httpadapter.NewServer(":0", b, b, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockBackfill{err: errors.New("not started")}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code, "liveness ignores readiness")
}

func TestReadyzReturns200WhenStarted(t *testing.T) {
	rec := get(t, newTestServer(&mockBackfill{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeStart(t *testing.T) {
	rec := get(t, newTestServer(&mockBackfill{err: errors.New("backfill has not started yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyzWithBackfill(t *testing.T) {
	b := pipeline.New(emptySource{}, nil, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	srv := httpadapter.NewServer(":0", b, b, slog.Default())

	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").Code)

	b.Run(context.Background(), 10)

	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)
	assert.JSONEq(t, `{"products":0,"updated":0,"skipped":0,"errors":0,"interrupted":false,"duration_seconds":0}`,
		get(t, srv, "/status").Body.String())
}

type emptySource struct{}

func (emptySource) ListWeatherProducts(context.Context, int) []domain.ProductSummary {
	return []domain.ProductSummary{}
}

func (emptySource) GetProduct(context.Context, int64) (domain.ProductDetail, bool) {
	return domain.ProductDetail{}, false
}

func TestStatusReportsProgress(t *testing.T) {
	b := &mockBackfill{progress: pipeline.Summary{
		Products: 90,
		Updated:  40,
		Skipped:  5,
		Errors:   1,
		Duration: 1500 * time.Millisecond,
	}}
	rec := get(t, newTestServer(b), "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"products": 90,
		"updated": 40,
		"skipped": 5,
		"errors": 1,
		"interrupted": false,
		"duration_seconds": 1.5
	}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockBackfill{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
