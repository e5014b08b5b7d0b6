// Package cache internal/infrastructure/cache/cached_rate_repository.go
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/metrics"
)

// cache label values for metrics
const (
	ratesCacheName  = "rates"
	seriesCacheName = "series"
)

var _ repository.RateRepository = (*CachedRateRepository)(nil)

// CachedRateRepository decorates a RateRepository with a short-lived current
// rates snapshot and a persistent store for closed historical ranges.
type CachedRateRepository struct {
	inner   repository.RateRepository
	rates   *RatesCache
	series  repository.SeriesStore
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewCachedRateRepository wraps inner. series may be nil to cache current rates only.
func NewCachedRateRepository(
	inner repository.RateRepository,
	rates *RatesCache,
	series repository.SeriesStore,
	m *metrics.Metrics,
	log logger.Logger,
) *CachedRateRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if rates == nil {
		rates = NewRatesCache(0)
	}

	return &CachedRateRepository{
		inner:   inner,
		rates:   rates,
		series:  series,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// GetCurrentRates serves the cached table while fresh. A failed refresh
// returns the error; an expired table is never served.
func (r *CachedRateRepository) GetCurrentRates(ctx context.Context) (entity.Rates, error) {
	if rates, ok := r.rates.Get(); ok {
		r.metrics.CacheHit(ratesCacheName)
		return rates, nil
	}
	r.metrics.CacheMiss(ratesCacheName)

	rates, err := r.inner.GetCurrentRates(ctx)
	if err != nil {
		r.rates.Clear()
		return nil, err
	}

	r.rates.Put(rates)
	return rates, nil
}

// GetHistoricalSeries serves ranges that ended before today from the store.
// Ranges reaching today are always fetched, since today's rate may still be published.
func (r *CachedRateRepository) GetHistoricalSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	cacheable := r.series != nil && end.Before(civil.DateOf(r.now())) && !start.After(end)

	if cacheable {
		series, err := r.series.FindSeries(ctx, code, start, end)
		switch {
		case err == nil:
			r.metrics.CacheHit(seriesCacheName)
			return series, nil
		case errors.Is(err, repository.ErrSeriesNotFound):
			r.metrics.CacheMiss(seriesCacheName)
		default:
			r.metrics.CacheMiss(seriesCacheName)
			r.logger.Warn("Series store lookup failed", map[string]interface{}{
				"currency": code,
				"error":    err.Error(),
			})
		}
	}

	series, err := r.inner.GetHistoricalSeries(ctx, code, start, end)
	if err != nil {
		return nil, err
	}

	if cacheable && !series.IsEmpty() {
		if err := r.series.StoreSeries(ctx, series); err != nil {
			r.logger.Warn("Failed to store series", map[string]interface{}{
				"currency": code,
				"error":    err.Error(),
			})
		}
	}

	return series, nil
}

// GetPairRate computes the cross-rate from the possibly cached current table
func (r *CachedRateRepository) GetPairRate(ctx context.Context, from, to string) (float64, error) {
	rates, err := r.GetCurrentRates(ctx)
	if err != nil {
		return 0, err
	}

	return rates.PairRate(strings.ToUpper(from), strings.ToUpper(to))
}
