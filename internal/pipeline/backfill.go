package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/couchcryptid/weather-backfill/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Product limits derived from the CLI flags.
const (
	ProductsPerDay = 3
	MaxProducts    = 2500

	progressInterval = 50
)

// ProductSource lists and fetches weather products. Failures surface as empty
// results, never as errors.
type ProductSource interface {
	ListWeatherProducts(ctx context.Context, limit int) []domain.ProductSummary
	GetProduct(ctx context.Context, id int64) (domain.ProductDetail, bool)
}

// ForecastSaver persists one product's weather for one zone and date.
type ForecastSaver interface {
	Save(ctx context.Context, zone, forecastDate string, weather domain.Weather) bool
}

// ProductLimit returns how many products a run fetches: MaxProducts with
// all, otherwise ProductsPerDay per day.
func ProductLimit(days int, all bool) int {
	if all {
		return MaxProducts
	}
	return days * ProductsPerDay
}

// Summary counts the outcomes of a backfill run.
type Summary struct {
	Products    int
	Updated     int
	Skipped     int
	Errors      int
	Interrupted bool
	Duration    time.Duration
}

// WriteReport prints the final counts.
func (s Summary) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "\n4. Done!\n")
	if s.Interrupted {
		fmt.Fprintf(w, "   Interrupted before all products were processed\n")
	}
	fmt.Fprintf(w, "   Updated: %d\n", s.Updated)
	fmt.Fprintf(w, "   Skipped: %d\n", s.Skipped)
	fmt.Fprintf(w, "   Errors: %d\n", s.Errors)
}

// Backfill runs the list → fetch → parse → save loop once, sequentially.
// Progress is written to out as human-readable text.
type Backfill struct {
	source  ProductSource
	saver   ForecastSaver
	out     io.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	started atomic.Bool
	current atomic.Pointer[Summary]
}

// New creates a Backfill. A nil clock uses real time.
func New(source ProductSource, saver ForecastSaver, out io.Writer, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Backfill {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Backfill{
		source:  source,
		saver:   saver,
		out:     out,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// CheckReadiness returns nil once a run has started.
func (b *Backfill) CheckReadiness(_ context.Context) error {
	if !b.started.Load() {
		return errors.New("backfill has not started yet")
	}
	return nil
}

// Progress returns the counts of the run in progress, or of the last run.
func (b *Backfill) Progress() Summary {
	if s := b.current.Load(); s != nil {
		return *s
	}
	return Summary{}
}

// Run processes up to limit of the most recent weather products and returns
// the outcome counts. Individual failures never stop the run; a cancelled ctx
// stops it between products.
func (b *Backfill) Run(ctx context.Context, limit int) Summary {
	start := b.clock.Now()
	b.started.Store(true)
	b.metrics.BackfillActive.Set(1)
	defer b.metrics.BackfillActive.Set(0)

	b.printf("\n2. Fetching weather products (limit: %d)...\n", limit)
	products := b.source.ListWeatherProducts(ctx, limit)
	b.printf("   Found %d products\n", len(products))
	b.logger.Info("backfill started", "limit", limit, "products", len(products))

	b.printf("\n3. Processing and saving weather data...\n")

	sum := Summary{Products: len(products)}
	b.current.Store(&Summary{Products: len(products)})
	for i, product := range products {
		if ctx.Err() != nil {
			b.logger.Warn("backfill interrupted", "processed", i, "products", len(products), "reason", ctx.Err())
			sum.Interrupted = true
			break
		}

		b.processProduct(ctx, i, len(products), product, &sum)
		snapshot := sum
		b.current.Store(&snapshot)

		if (i+1)%progressInterval == 0 {
			b.printf("  ... processed %d/%d products\n", i+1, len(products))
		}
	}

	sum.Duration = b.clock.Since(start)
	final := sum
	b.current.Store(&final)
	b.metrics.RecordRun(sum.Duration, b.clock.Now(), sum.Errors)
	b.logger.Info("backfill finished",
		"updated", sum.Updated,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
		"duration", sum.Duration,
	)
	sum.WriteReport(b.out)
	return sum
}

func (b *Backfill) processProduct(ctx context.Context, i, total int, product domain.ProductSummary, sum *Summary) {
	date := domain.ForecastDate(product.PublishedTime)
	zones := domain.ExtractZones(product.ForecastZone)

	if product.ID == 0 || len(zones) == 0 {
		b.logger.Debug("skipping product without id or known zones", "product_id", product.ID, "published", product.PublishedTime)
		sum.Skipped++
		b.metrics.Products.WithLabelValues("skipped").Inc()
		return
	}

	detail, ok := b.source.GetProduct(ctx, product.ID)
	if !ok {
		sum.Errors++
		b.metrics.Products.WithLabelValues("error").Inc()
		return
	}

	weather, err := domain.ParseWeather(detail)
	if err != nil {
		b.logger.Debug("skipping unparseable product", "product_id", product.ID, "error", err)
		sum.Skipped++
		b.metrics.Products.WithLabelValues("skipped").Inc()
		return
	}
	if len(weather.Unparsed) > 0 {
		b.logger.Warn("snowfall text not parsed, kept under metrics.unparsed", "product_id", product.ID, "fields", weather.Unparsed)
	}

	saved := 0
	for _, zone := range zones {
		if !b.saver.Save(ctx, zone, date, weather) {
			sum.Errors++
			continue
		}
		saved++
		sum.Updated++
		b.printf("  [%d/%d] %s %s: 12hr=%s, 24hr=%s\n",
			i+1, total, date, zone,
			domain.DisplaySnowfall(weather.Snowfall12hr),
			domain.DisplaySnowfall(weather.Snowfall24hr),
		)
	}
	if saved == 0 {
		b.metrics.Products.WithLabelValues("save_failed").Inc()
		return
	}
	b.metrics.Products.WithLabelValues("processed").Inc()
}

func (b *Backfill) printf(format string, args ...any) {
	fmt.Fprintf(b.out, format, args...)
}
