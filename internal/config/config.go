package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	// avalanche.org public API.
	AvalancheAPIBase  string
	AvalancheCenterID string
	AvalancheTimeout  time.Duration

	// Forecast store.
	StoreBackend       string
	SupabaseURL        string
	SupabaseServiceKey string
	DatabaseURL        string
	DatabaseMaxConns   int
	DatabaseViaBouncer bool
	StoreTimeout       time.Duration

	// Optional change events; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional metrics push and status server.
	PushgatewayURL  string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads variables from the given .env files (default ".env") when
// they exist. Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	avalancheTimeout, err := parsePositiveDuration("AVALANCHE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	storeTimeout, err := parsePositiveDuration("STORE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	maxConns, err := parsePositiveInt("DATABASE_MAX_CONNS", 2)
	if err != nil {
		return nil, err
	}

	viaBouncer := false
	if v := os.Getenv("DATABASE_VIA_BOUNCER"); v != "" {
		viaBouncer, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid DATABASE_VIA_BOUNCER")
		}
	}

	cfg := &Config{
		AvalancheAPIBase:  sharedcfg.EnvOrDefault("AVALANCHE_API_BASE", "https://api.avalanche.org/v2/public"),
		AvalancheCenterID: sharedcfg.EnvOrDefault("AVALANCHE_CENTER_ID", "CBAC"),
		AvalancheTimeout:  avalancheTimeout,

		StoreBackend:       sharedcfg.EnvOrDefault("STORE_BACKEND", BackendSupabase),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabaseMaxConns:   maxConns,
		DatabaseViaBouncer: viaBouncer,
		StoreTimeout:       storeTimeout,

		KafkaTopic: sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-forecasts-updated"),

		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.AvalancheAPIBase == "" {
		return nil, errors.New("AVALANCHE_API_BASE is required")
	}
	if cfg.AvalancheCenterID == "" {
		return nil, errors.New("AVALANCHE_CENTER_ID is required")
	}

	switch cfg.StoreBackend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY required")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendSupabase, BackendPostgres)
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
