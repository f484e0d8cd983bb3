package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_backfill"

// Metrics holds the Prometheus counters, histograms, and gauges for a backfill run.
type Metrics struct {
	ProductsListed prometheus.Counter
	Products       *prometheus.CounterVec // labels: outcome={processed,skipped,error,save_failed}
	ForecastsSaved prometheus.Counter
	SaveErrors     prometheus.Counter
	SaveDuration   prometheus.Histogram
	BackfillActive prometheus.Gauge

	// Upstream API metrics.
	FetchRequests *prometheus.CounterVec   // labels: endpoint={list,detail}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: endpoint={list,detail}

	// Change event metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Run summary, meant for the Pushgateway.
	LastRunDuration   prometheus.Gauge
	LastRunTimestamp  prometheus.Gauge
	LastRunErrorCount prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		ProductsListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_listed_total",
			Help:      "Weather products returned by the product list endpoint.",
		}),
		Products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_total",
			Help:      "Weather products handled, by outcome.",
		}, []string{"outcome"}),
		ForecastsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_saved_total",
			Help:      "Forecast records upserted.",
		}),
		SaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_errors_total",
			Help:      "Forecast upserts that failed.",
		}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Duration of a single forecast upsert.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		BackfillActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "1 while a backfill run is in progress, 0 otherwise.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "avalanche.org API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "avalanche.org API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Forecast change events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Forecast change events that failed to publish.",
		}),
		LastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last completed backfill run.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_completion_timestamp_seconds",
			Help:      "Unix time the last backfill run completed.",
		}),
		LastRunErrorCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_errors",
			Help:      "Error count reported by the last backfill run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ProductsListed,
		m.Products,
		m.ForecastsSaved,
		m.SaveErrors,
		m.SaveDuration,
		m.BackfillActive,
		m.FetchRequests,
		m.FetchDuration,
		m.EventsPublished,
		m.PublishErrors,
		m.LastRunDuration,
		m.LastRunTimestamp,
		m.LastRunErrorCount,
	}
}

// NewMetrics creates and registers all backfill metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
