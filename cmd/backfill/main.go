// Command backfill pulls recent weather products from the avalanche.org
// public API and upserts one forecast record per zone and day.
//
// Usage:
//
//	backfill --days=30
//	backfill --all
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-backfill/internal/pipeline"
	"github.com/spf13/cobra"
)

// errRunFailed is returned with --fail-on-error when any product or save failed.
var errRunFailed = errors.New("backfill finished with errors")

type options struct {
	days        int
	all         bool
	failOnError bool
}

func (o options) limit() int {
	return pipeline.ProductLimit(o.days, o.all)
}

func newRootCmd(run func(ctx context.Context, opts options) error) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Backfill weather data from the CBAC API",
		Long: `backfill fetches recent weather products from the avalanche.org public API,
parses temperature, wind, and snowfall for each forecast zone, and upserts one
record per zone and forecast date.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.all && opts.days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", opts.days)
			}
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.days, "days", 30, "Number of days to backfill (about 3 products per day)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Backfill all available weather data")
	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, "Exit non-zero when any product or save failed")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(runBackfill).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
