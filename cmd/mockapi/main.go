// Command mockapi serves a fixture-backed fake of the avalanche.org weather
// product endpoints for local dry runs of the backfill job.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8081 -days 10
//	go run ./cmd/mockapi -fixture data/mock/cbac_weather.json
//	go run ./cmd/mockapi -days 10 -dump data/mock/cbac_weather.json
//
// Point the job at it with AVALANCHE_API_BASE=http://localhost:8081.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":8081", "listen address")
	fixturePath := flag.String("fixture", "", "JSON fixture to serve (generated when empty)")
	center := flag.String("center", "CBAC", "avalanche center id accepted by the list endpoint")
	days := flag.Int("days", 10, "days of generated products when no fixture is given")
	start := flag.String("start", "2024-01-15", "publish date of the newest generated product")
	failIDs := flag.String("fail-ids", "", "comma-separated product ids whose detail returns 500")
	dump := flag.String("dump", "", "write the fixture to this path and exit")
	flag.Parse()

	fx, err := loadOrGenerate(*fixturePath, *days, *start)
	if err != nil {
		return err
	}
	log.Printf("fixture: %d products, %d details", len(fx.Products), len(fx.Details))

	if *dump != "" {
		if err := writeJSON(*dump, fx); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *dump)
		return nil
	}

	failing, err := parseIDs(*failIDs)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newHandler(fx, *center, failing),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("serving center %s on %s", *center, *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadOrGenerate(path string, days int, start string) (fixture, error) {
	if path == "" {
		newest, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return fixture{}, fmt.Errorf("invalid -start: %w", err)
		}
		return generateFixture(days, newest), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return fx, nil
}

func parseIDs(s string) (map[int64]bool, error) {
	ids := map[int64]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -fail-ids entry %q", part)
		}
		ids[id] = true
	}
	return ids, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
