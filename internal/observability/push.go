package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobName is the Pushgateway job label for backfill runs.
const PushJobName = "weather_backfill"

// RecordRun sets the run summary gauges.
func (m *Metrics) RecordRun(duration time.Duration, finishedAt time.Time, errors int) {
	m.LastRunDuration.Set(duration.Seconds())
	m.LastRunTimestamp.Set(float64(finishedAt.Unix()))
	m.LastRunErrorCount.Set(float64(errors))
}

// Push sends everything in the gatherer to a Prometheus Pushgateway. A batch
// job exits before any scrape, so its metrics only survive through a push.
func Push(ctx context.Context, gatewayURL string, gatherer prometheus.Gatherer, grouping map[string]string) error {
	p := push.New(gatewayURL, PushJobName).Gatherer(gatherer)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
