package avalanche

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/domain"
	"github.com/couchcryptid/weather-backfill/internal/observability"
)

const (
	endpointList   = "list"
	endpointDetail = "detail"

	productTypeWeather = "weather"
)

// Client reads weather products from the avalanche.org public API.
// Failures are logged and reported as empty results; nothing is retried.
type Client struct {
	baseURL    string
	centerID   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an avalanche.org client for one avalanche center.
// Every request is bounded by timeout.
func NewClient(baseURL, centerID string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		centerID: centerID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ListWeatherProducts returns up to limit weather product summaries, most
// recently published first. Products with equal published times keep their
// API order. Any fetch or decode error yields an empty slice.
func (c *Client) ListWeatherProducts(ctx context.Context, limit int) []domain.ProductSummary {
	params := url.Values{
		"avalanche_center_id": {c.centerID},
		"product_type":        {productTypeWeather},
	}
	u := c.baseURL + "/products?" + params.Encode()

	var products []domain.ProductSummary
	if err := c.getJSON(ctx, u, endpointList, &products); err != nil {
		c.logger.Error("fetch weather products failed", "center", c.centerID, "error", err)
		return []domain.ProductSummary{}
	}
	c.metrics.ProductsListed.Add(float64(len(products)))

	return LatestFirst(products, limit)
}

// GetProduct fetches the full weather product by id. The bool is false when
// the product could not be fetched or decoded.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.ProductDetail, bool) {
	u := c.baseURL + "/product/" + strconv.FormatInt(id, 10)

	var detail domain.ProductDetail
	if err := c.getJSON(ctx, u, endpointDetail, &detail); err != nil {
		c.logger.Error("fetch weather product failed", "product_id", id, "error", err)
		return domain.ProductDetail{}, false
	}
	return detail, true
}

// LatestFirst stable-sorts summaries by published time descending and keeps at most limit.
func LatestFirst(products []domain.ProductSummary, limit int) []domain.ProductSummary {
	if limit <= 0 {
		return []domain.ProductSummary{}
	}
	sorted := make([]domain.ProductSummary, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedTime > sorted[j].PublishedTime
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, v any) error {
	start := time.Now()
	err := c.doRequest(ctx, fullURL, v)
	c.metrics.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.FetchRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) doRequest(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("avalanche API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
