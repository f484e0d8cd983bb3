package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/couchcryptid/weather-backfill/internal/observability"
)

// ForecastStore upserts forecast records keyed by (zone_id, forecast_date).
type ForecastStore interface {
	UpsertForecast(ctx context.Context, rec domain.ForecastRecord) error
}

// EventPublisher announces saved forecast records.
type EventPublisher interface {
	PublishForecast(ctx context.Context, event domain.ForecastEvent) error
}

// StoreSaver implements ForecastSaver on top of a ForecastStore, with an
// optional EventPublisher notified after each successful save.
type StoreSaver struct {
	store     ForecastStore
	publisher EventPublisher
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSaver creates a StoreSaver. Pass a nil publisher to disable change
// events; a zero timeout leaves each upsert bounded only by ctx.
func NewSaver(store ForecastStore, publisher EventPublisher, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *StoreSaver {
	return &StoreSaver{
		store:     store,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Save builds the forecast record for one zone and date and upserts it.
// Errors are logged and reported as false. A failed change event does not
// fail the save.
func (s *StoreSaver) Save(ctx context.Context, zone, forecastDate string, weather domain.Weather) bool {
	rec := domain.NewForecastRecord(zone, forecastDate, weather)

	saveCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.store.UpsertForecast(saveCtx, rec)
	s.metrics.SaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("save forecast failed",
			"zone", zone,
			"forecast_date", forecastDate,
			"error", err,
		)
		s.metrics.SaveErrors.Inc()
		return false
	}
	s.metrics.ForecastsSaved.Inc()

	if s.publisher == nil {
		return true
	}
	if err := s.publisher.PublishForecast(ctx, domain.NewForecastEvent(rec)); err != nil {
		s.logger.Warn("publish forecast event failed", "key", rec.Key(), "error", err)
		s.metrics.PublishErrors.Inc()
		return true
	}
	s.metrics.EventsPublished.Inc()
	return true
}
