package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/config"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/service"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/metrics"
)

const (
	endpointTable  = "table"
	endpointSeries = "series"

	// upper bound on a response body, NBP tables are a few KB
	maxBodyBytes = 4 << 20
)

var _ service.NBPAPI = (*NBPAPIClient)(nil)

// NBPAPIClient implements the NBP API interface over HTTP
type NBPAPIClient struct {
	baseURL       string
	httpClient    *http.Client
	tableTimeout  time.Duration
	seriesTimeout time.Duration
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// Option configures an NBPAPIClient
type Option func(*NBPAPIClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(n *NBPAPIClient) { n.httpClient = c }
}

// WithLogger sets the client logger
func WithLogger(l logger.Logger) Option {
	return func(n *NBPAPIClient) { n.logger = l }
}

// WithMetrics enables upstream request metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *NBPAPIClient) { n.metrics = m }
}

// NewNBPAPIClient creates a new NBP API client
func NewNBPAPIClient(cfg config.NBPConfig, opts ...Option) *NBPAPIClient {
	c := &NBPAPIClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{},
		tableTimeout:  cfg.TableTimeout,
		seriesTimeout: cfg.SeriesTimeout,
		logger:        logger.GetDefaultLogger(),
	}
	for _, o := range opts {
		o(c)
	}

	if c.baseURL == "" {
		c.baseURL = config.DefaultNBPBaseURL
	}
	if c.tableTimeout <= 0 {
		c.tableTimeout = 10 * time.Second
	}
	if c.seriesTimeout <= 0 {
		c.seriesTimeout = 15 * time.Second
	}
	if c.logger == nil {
		c.logger = logger.GetDefaultLogger()
	}

	return c
}

// tableResponse is one element of the /tables/{table}/ array
type tableResponse struct {
	Table         string `json:"table"`
	No            string `json:"no"`
	EffectiveDate string `json:"effectiveDate"`
	Rates         []struct {
		Currency string  `json:"currency"`
		Code     string  `json:"code"`
		Mid      float64 `json:"mid"`
	} `json:"rates"`
}

// seriesResponse is the /rates/{table}/{code}/{start}/{end}/ object
type seriesResponse struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []struct {
		No            string  `json:"no"`
		EffectiveDate string  `json:"effectiveDate"`
		Mid           float64 `json:"mid"`
	} `json:"rates"`
}

// FetchTable retrieves the latest rates published in table
func (c *NBPAPIClient) FetchTable(ctx context.Context, table entity.Table) ([]entity.CurrencyRate, error) {
	path := fmt.Sprintf("/tables/%s/", table)

	ctx, cancel := context.WithTimeout(ctx, c.tableTimeout)
	defer cancel()

	body, err := c.get(ctx, endpointTable, path, "")
	if err != nil {
		return nil, err
	}

	var tables []tableResponse
	if err := json.Unmarshal(body, &tables); err != nil {
		return nil, apperror.DataFetch(fmt.Sprintf("failed to decode table %s", table), "", err)
	}
	if len(tables) == 0 {
		return nil, apperror.DataFetch(fmt.Sprintf("table %s response is empty", table), "", nil)
	}

	data := tables[0]
	rates := make([]entity.CurrencyRate, 0, len(data.Rates))
	for _, r := range data.Rates {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" || r.Mid <= 0 {
			c.logger.Warn("Skipping malformed rate record", map[string]interface{}{
				"table": string(table),
				"code":  r.Code,
				"mid":   r.Mid,
			})
			continue
		}
		rates = append(rates, entity.CurrencyRate{
			Code:       code,
			Rate:       r.Mid,
			Table:      table,
			Name:       r.Currency,
			LastUpdate: data.EffectiveDate,
		})
	}

	c.logger.Debug("Fetched NBP table", map[string]interface{}{
		"table":          string(table),
		"effective_date": data.EffectiveDate,
		"count":          len(rates),
	})

	return rates, nil
}

// FetchSeries retrieves the rates of code in table published within [start, end]
func (c *NBPAPIClient) FetchSeries(ctx context.Context, table entity.Table, code string, start, end civil.Date) ([]entity.RatePoint, error) {
	path := fmt.Sprintf("/rates/%s/%s/%s/%s/", url.PathEscape(string(table)), url.PathEscape(code), start, end)

	ctx, cancel := context.WithTimeout(ctx, c.seriesTimeout)
	defer cancel()

	body, err := c.get(ctx, endpointSeries, path, code)
	if err != nil {
		return nil, err
	}

	var data seriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperror.DataFetch("failed to decode historical data", code, err)
	}

	points := make([]entity.RatePoint, 0, len(data.Rates))
	for _, r := range data.Rates {
		d, err := civil.ParseDate(r.EffectiveDate)
		if err != nil {
			return nil, apperror.DataFetch(fmt.Sprintf("invalid effective date %q", r.EffectiveDate), code, err)
		}
		if r.Mid <= 0 {
			c.logger.Warn("Skipping malformed rate record", map[string]interface{}{
				"table": string(table),
				"code":  code,
				"date":  r.EffectiveDate,
				"mid":   r.Mid,
			})
			continue
		}
		points = append(points, entity.RatePoint{Date: d, Rate: r.Mid})
	}

	return points, nil
}

// get performs a GET against the API and returns the body of a 200 response
func (c *NBPAPIClient) get(ctx context.Context, endpoint, path, currency string) ([]byte, error) {
	reqURL := c.baseURL + path
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperror.DataFetch("failed to create request", currency, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error", time.Since(started).Seconds())
		c.logger.Error("NBP API request failed", map[string]interface{}{
			"endpoint": path,
			"error":    err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.DataFetch("NBP API request timed out", currency, err)
		}
		return nil, apperror.DataFetch("failed to execute request", currency, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"endpoint": path,
				"error":    closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error", time.Since(started).Seconds())
		return nil, apperror.DataFetch("failed to read response body", currency, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		c.metrics.ObserveUpstream(endpoint, "success", time.Since(started).Seconds())
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.ObserveUpstream(endpoint, "not_found", time.Since(started).Seconds())
		c.logger.Warn("NBP API returned no data", map[string]interface{}{
			"endpoint": path,
		})
	default:
		c.metrics.ObserveUpstream(endpoint, "http_error", time.Since(started).Seconds())
		c.logger.Error("NBP API returned error status", map[string]interface{}{
			"endpoint": path,
			"status":   resp.StatusCode,
			"body":     truncate(string(body), 200),
		})
	}

	return nil, apperror.API("NBP API error", resp.StatusCode, path)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
