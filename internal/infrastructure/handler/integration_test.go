// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/nbp-rate-service/internal/application/service"
	"github.com/damon-houk/nbp-rate-service/internal/config"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/api"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/cache"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/db"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/handler"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fakeTableA = `[{"table":"A","no":"045/A/NBP/2024","effectiveDate":"2024-03-05","rates":[
		{"currency":"dolar amerykański","code":"USD","mid":4.00},
		{"currency":"euro","code":"EUR","mid":4.30}]}]`
	fakeTableB = `[{"table":"B","no":"010/B/NBP/2024","effectiveDate":"2024-03-06","rates":[
		{"currency":"euro","code":"EUR","mid":4.32},
		{"currency":"afgani","code":"AFN","mid":0.055}]}]`
	fakeUSDSeries = `{"table":"A","currency":"dolar amerykański","code":"USD","rates":[
		{"no":"001/A/NBP/2024","effectiveDate":"2024-01-02","mid":4.00},
		{"no":"002/A/NBP/2024","effectiveDate":"2024-01-03","mid":4.10},
		{"no":"003/A/NBP/2024","effectiveDate":"2024-01-04","mid":4.20}]}`
	fakeEURSeries = `{"table":"B","currency":"euro","code":"EUR","rates":[
		{"no":"001/B/NBP/2024","effectiveDate":"2024-01-03","mid":4.50},
		{"no":"001/B/NBP/2024","effectiveDate":"2024-01-04","mid":4.20}]}`
	fakeAFNSeries = `{"table":"B","currency":"afgani","code":"AFN","rates":[
		{"no":"001/B/NBP/2024","effectiveDate":"2024-01-10","mid":0.055}]}`
)

type fakeResponse struct {
	status int
	body   string
}

// fakeNBP serves canned NBP API responses by path; unknown paths answer 404
type fakeNBP struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	hits      map[string]int
}

func newFakeNBP() *fakeNBP {
	return &fakeNBP{
		responses: map[string]fakeResponse{
			"/tables/A/": {http.StatusOK, fakeTableA},
			"/tables/B/": {http.StatusOK, fakeTableB},
			"/rates/A/USD/2024-01-01/2024-01-05/": {http.StatusOK, fakeUSDSeries},
			"/rates/B/EUR/2024-01-01/2024-01-05/": {http.StatusOK, fakeEURSeries},
			"/rates/B/AFN/2024-01-08/2024-01-12/": {http.StatusOK, fakeAFNSeries},
			"/rates/A/USD/2024-01-08/2024-01-12/": {http.StatusInternalServerError, "boom"},
		},
		hits: make(map[string]int),
	}
}

func (f *fakeNBP) set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status, body}
}

func (f *fakeNBP) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeNBP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	resp, ok := f.responses[r.URL.Path]
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	if !ok {
		http.Error(w, "404 NotFound - Not Found - Brak danych", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	io.WriteString(w, resp.body)
}

type testServer struct {
	url string
	nbp *fakeNBP
}

// setupTestServer runs the full stack against a fake NBP API
func setupTestServer(t *testing.T, cached bool) *testServer {
	t.Helper()

	nbp := newFakeNBP()
	upstream := httptest.NewServer(nbp)
	t.Cleanup(upstream.Close)

	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	cfg := config.Default()
	cfg.NBP.BaseURL = upstream.URL

	client := api.NewNBPAPIClient(cfg.NBP, api.WithLogger(log), api.WithMetrics(m))
	var repo repository.RateRepository = db.NewNBPRateRepository(client, cfg.NBP.BaseCurrency, log)

	ts := &testServer{nbp: nbp}
	if cached {
		badgerDB, err := db.OpenBadger("")
		require.NoError(t, err)
		t.Cleanup(func() { badgerDB.Close() })

		repo = cache.NewCachedRateRepository(repo, cache.NewRatesCache(time.Hour),
			db.NewBadgerSeriesStore(badgerDB, time.Hour), m, log)
	}

	rateHandler := handler.NewRateHandler(service.NewRateService(repo, log), cfg.NBP.BaseCurrency, log)
	conversionHandler := handler.NewConversionHandler(service.NewConversionService(repo, log), log)

	server := httptest.NewServer(handler.NewRouter(rateHandler, conversionHandler, log, m, reg))
	t.Cleanup(server.Close)

	ts.url = server.URL
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupTestServer(t, false)

	resp, err := http.Get(ts.url + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	getJSON(t, ts.url+"/rates", nil)

	resp, err = http.Get(ts.url + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `path="/rates"`)
}

func TestCurrentRates(t *testing.T) {
	ts := setupTestServer(t, false)

	var rates handler.RatesResponse
	resp := getJSON(t, ts.url+"/rates", &rates)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PLN", rates.Base)
	assert.Equal(t, 4, rates.Count)

	byCode := make(map[string]entity.CurrencyRate)
	for _, r := range rates.Rates {
		byCode[r.Code] = r
	}
	assert.Equal(t, 4.32, byCode["EUR"].Rate, "table B shadows table A")
	assert.Equal(t, 1.0, byCode["PLN"].Rate)
	assert.Equal(t, entity.TableNone, byCode["PLN"].Table)

	var currencies []handler.CurrencyResponse
	getJSON(t, ts.url+"/currencies", &currencies)
	require.Len(t, currencies, 4)
	assert.Equal(t, "AFN", currencies[0].Code)
	assert.Equal(t, "USD", currencies[3].Code)

	var usd entity.CurrencyRate
	resp = getJSON(t, ts.url+"/rates/usd", &usd)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4.0, usd.Rate)
	assert.Equal(t, "2024-03-05", usd.LastUpdate)
}

func TestCurrentRatesPartialAndTotalFailure(t *testing.T) {
	ts := setupTestServer(t, false)
	ts.nbp.set("/tables/A/", http.StatusInternalServerError, "boom")

	var rates handler.RatesResponse
	resp := getJSON(t, ts.url+"/rates", &rates)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, rates.Count, "table B plus base currency")

	ts.nbp.set("/tables/B/", http.StatusServiceUnavailable, "down")

	var errResp handler.ErrorResponse
	resp = getJSON(t, ts.url+"/rates", &errResp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Rate data unavailable", errResp.Error)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), errResp.RequestID)
}

func TestHistory(t *testing.T) {
	ts := setupTestServer(t, false)

	t.Run("series", func(t *testing.T) {
		var series entity.HistoricalSeries
		resp := getJSON(t, ts.url+"/rates/USD/history?start=2024-01-01&end=2024-01-05", &series)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, series.Points, 3)
		assert.Equal(t, "2024-01-02", series.Points[0].Date.String())
	})

	t.Run("no data is an empty series with bounds", func(t *testing.T) {
		var raw map[string]interface{}
		resp := getJSON(t, ts.url+"/rates/XYZ/history?start=2024-01-06&end=2024-01-07", &raw)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "XYZ", raw["currency"])
		assert.Equal(t, []interface{}{}, raw["data"])
		assert.Equal(t, "2024-01-06", raw["start_date"])
		assert.Equal(t, "2024-01-07", raw["end_date"])
	})

	t.Run("base currency", func(t *testing.T) {
		var series entity.HistoricalSeries
		getJSON(t, ts.url+"/rates/PLN/history?start=2024-01-01&end=2024-01-07", &series)

		assert.Len(t, series.Points, 5)
	})

	t.Run("upstream error", func(t *testing.T) {
		var errResp handler.ErrorResponse
		resp := getJSON(t, ts.url+"/rates/USD/history?start=2024-01-08&end=2024-01-12", &errResp)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, errResp.Description, "status code: 500")
	})

	t.Run("malformed codes", func(t *testing.T) {
		before := ts.nbp.hitCount("/rates/A/ZZ")
		for _, code := range []string{"ZZ%3F", "ABCDEFGH", "E1R"} {
			var errResp handler.ErrorResponse
			resp := getJSON(t, ts.url+"/rates/"+code+"/history?start=2024-01-01&end=2024-01-05", &errResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, code)
			assert.Equal(t, "Invalid currency", errResp.Error, code)
		}
		assert.Equal(t, before, ts.nbp.hitCount("/rates/A/ZZ"))
	})

	t.Run("invalid dates", func(t *testing.T) {
		for _, query := range []string{
			"start=2024-01-01",
			"start=yesterday&end=2024-01-05",
			"start=2024-02-01&end=2024-01-01",
			"start=2023-01-01&end=2024-01-01",
		} {
			resp := getJSON(t, ts.url+"/rates/USD/history?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		}
	})
}

func TestConvert(t *testing.T) {
	ts := setupTestServer(t, false)

	t.Run("current rates", func(t *testing.T) {
		var result map[string]interface{}
		resp := getJSON(t, ts.url+"/convert?from=USD&to=PLN&amount=100", &result)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "400", result["converted_amount"])
		assert.Equal(t, 4.0, result["rate"])
	})

	t.Run("on a date", func(t *testing.T) {
		ts.nbp.set("/rates/A/USD/2024-01-03/2024-01-03/", http.StatusOK,
			`{"code":"USD","rates":[{"effectiveDate":"2024-01-03","mid":4.10}]}`)

		var result map[string]interface{}
		resp := getJSON(t, ts.url+"/convert?from=USD&to=PLN&amount=10&date=2024-01-03", &result)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "41", result["converted_amount"])
		assert.Equal(t, "2024-01-03", result["rate_date"])
	})

	t.Run("no publication on date", func(t *testing.T) {
		resp := getJSON(t, ts.url+"/convert?from=USD&to=PLN&amount=10&date=2024-01-06", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad requests", func(t *testing.T) {
		for _, query := range []string{
			"from=USD&to=PLN",
			"from=USD&to=PLN&amount=abc",
			"from=USD&to=PLN&amount=-5",
			"from=XYZ&to=PLN&amount=5",
			"from=USD&to=PLN&amount=5&date=03.01.2024",
		} {
			resp := getJSON(t, ts.url+"/convert?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		}
	})
}

func TestPairHistory(t *testing.T) {
	ts := setupTestServer(t, false)

	t.Run("aligned", func(t *testing.T) {
		var pair handler.PairHistoryResponse
		resp := getJSON(t, ts.url+"/pairs/usd/eur/history?start=2024-01-01&end=2024-01-05", &pair)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, pair.NoData)
		require.Len(t, pair.Data, 2)
		assert.Equal(t, "2024-01-03", pair.Data[0].Date.String())
		assert.Equal(t, 1.0, pair.Data[1].Rate)

		require.NotNil(t, pair.Stats)
		assert.InDelta(t, 4.10/4.50, pair.Stats.Min, 1e-9)
		assert.Equal(t, 1.0, pair.Stats.Max)
		assert.InDelta(t, (4.10/4.50+1.0)/2, pair.Stats.Avg, 1e-9)
	})

	t.Run("disjoint dates", func(t *testing.T) {
		var pair handler.PairHistoryResponse
		resp := getJSON(t, ts.url+"/pairs/AFN/EUR/history?start=2024-01-08&end=2024-01-12", &pair)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, pair.NoData)
		assert.Equal(t, entity.NoDataMessage, pair.Message)
		assert.Empty(t, pair.Data)
		assert.Nil(t, pair.Stats)
	})

	t.Run("malformed codes", func(t *testing.T) {
		for _, path := range []string{
			"/pairs/ABCDEFGH/PLN/history?days=5",
			"/pairs/USD/ZZ%3F/history?days=5",
			"/pairs/U1D/EUR/history?days=5",
		} {
			var errResp handler.ErrorResponse
			resp := getJSON(t, ts.url+path, &errResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
			assert.Equal(t, "Invalid currency", errResp.Error, path)
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		resp := getJSON(t, ts.url+"/pairs/USD/EUR/history?days=-1", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = getJSON(t, ts.url+"/pairs/USD/EUR/history?days=365", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCachedStack(t *testing.T) {
	ts := setupTestServer(t, true)

	for i := 0; i < 3; i++ {
		resp := getJSON(t, ts.url+"/rates", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, ts.nbp.hitCount("/tables/A/"))

	for i := 0; i < 2; i++ {
		var series entity.HistoricalSeries
		getJSON(t, ts.url+"/rates/USD/history?start=2024-01-01&end=2024-01-05", &series)
		assert.Len(t, series.Points, 3)
	}
	assert.Equal(t, 1, ts.nbp.hitCount("/rates/A/USD/2024-01-01/2024-01-05/"))

	// the table lookup for the series miss goes to the API directly
	tableHits := ts.nbp.hitCount("/tables/A/")

	resp := getJSON(t, ts.url+"/convert?from=EUR&to=USD&amount=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
	assert.Equal(t, tableHits, ts.nbp.hitCount("/tables/A/"))
}
