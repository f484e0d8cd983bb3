package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/couchcryptid/weather-backfill/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (options, bool, error) {
	t.Helper()
	var got options
	called := false
	cmd := newRootCmd(func(_ context.Context, opts options) error {
		got = opts
		called = true
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return got, called, err
}

func TestRootCmd_ProductLimit(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "default", args: nil, want: 90},
		{name: "days", args: []string{"--days=7"}, want: 21},
		{name: "all", args: []string{"--all"}, want: 2500},
		{name: "all wins over days", args: []string{"--days=2", "--all"}, want: 2500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, called, err := execute(t, tt.args...)
			require.NoError(t, err)
			require.True(t, called)
			assert.Equal(t, tt.want, opts.limit())
			assert.False(t, opts.failOnError)
		})
	}
}

func TestRootCmd_FailOnError(t *testing.T) {
	opts, _, err := execute(t, "--fail-on-error")
	require.NoError(t, err)
	assert.True(t, opts.failOnError)
}

func TestRootCmd_RejectsNonPositiveDays(t *testing.T) {
	_, called, err := execute(t, "--days=0")
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "--days")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, called, err := execute(t, "extra")
	require.Error(t, err)
	assert.False(t, called)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf)

	rule := "============================================================"
	assert.Equal(t, rule+"\nWeather Data Backfill\n"+rule+"\n", buf.String())
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, "Supabase", backendName(config.BackendSupabase))
	assert.Equal(t, "Postgres", backendName(config.BackendPostgres))
}
