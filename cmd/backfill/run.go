package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/couchcryptid/weather-backfill/internal/adapter/avalanche"
	httpadapter "github.com/couchcryptid/weather-backfill/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-backfill/internal/adapter/kafka"
	"github.com/couchcryptid/weather-backfill/internal/adapter/postgres"
	"github.com/couchcryptid/weather-backfill/internal/adapter/supabase"
	"github.com/couchcryptid/weather-backfill/internal/config"
	"github.com/couchcryptid/weather-backfill/internal/observability"
	"github.com/couchcryptid/weather-backfill/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

// store is what the job needs from either backend.
type store interface {
	pipeline.ForecastStore
	Ping(ctx context.Context) error
}

func runBackfill(ctx context.Context, opts options) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	out := os.Stdout

	printBanner(out)

	fmt.Fprintf(out, "\n1. Connecting to %s...\n", backendName(cfg.StoreBackend))
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	fmt.Fprintf(out, "   Connected\n")

	var publisher pipeline.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = p
		logger.Info("forecast change events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	source := avalanche.NewClient(cfg.AvalancheAPIBase, cfg.AvalancheCenterID, cfg.AvalancheTimeout, metrics, logger)
	saver := pipeline.NewSaver(st, publisher, cfg.StoreTimeout, logger, metrics)
	backfill := pipeline.New(source, saver, out, logger, metrics, nil)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, backfill, backfill, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("status server shutdown error", "error", err)
			}
		}()
	}

	sum := backfill.Run(ctx, opts.limit())

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		grouping := map[string]string{"center": cfg.AvalancheCenterID}
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, prometheus.DefaultGatherer, grouping); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	if opts.failOnError && sum.Errors > 0 {
		return fmt.Errorf("%w: %d errors", errRunFailed, sum.Errors)
	}
	return nil
}

func printBanner(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Weather Data Backfill")
	fmt.Fprintln(w, rule)
}

func backendName(backend string) string {
	if backend == config.BackendPostgres {
		return "Postgres"
	}
	return "Supabase"
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, func(), error) {
	var (
		st      store
		closeFn = func() {}
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseViaBouncer)
		if err != nil {
			return nil, nil, err
		}
		st, closeFn = pg, pg.Close
	default:
		st = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StoreTimeout, logger)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := st.Ping(pingCtx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("connect to %s: %w", backendName(cfg.StoreBackend), err)
	}
	return st, closeFn, nil
}
