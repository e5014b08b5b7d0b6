// Package db internal/infrastructure/db/nbp_rate_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/domain/service"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

var _ repository.RateRepository = (*NBPRateRepository)(nil)

// tables lists the NBP tables in merge order. A later table overwrites an
// earlier one on a code collision, so table B shadows table A.
var tables = []entity.Table{entity.TableA, entity.TableB}

// NBPRateRepository implements the RateRepository interface on top of the NBP API.
// It holds no mutable state; every call goes to the API.
type NBPRateRepository struct {
	source       service.NBPAPI
	baseCurrency string
	logger       logger.Logger
}

// NewNBPRateRepository creates a new repository for NBP rates
func NewNBPRateRepository(source service.NBPAPI, baseCurrency string, log logger.Logger) *NBPRateRepository {
	if baseCurrency == "" {
		baseCurrency = entity.DefaultBaseCurrency
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &NBPRateRepository{
		source:       source,
		baseCurrency: strings.ToUpper(baseCurrency),
		logger:       log,
	}
}

// GetCurrentRates fetches tables A and B concurrently and merges them with the
// base currency. A single failing table still yields the other table's rates.
func (r *NBPRateRepository) GetCurrentRates(ctx context.Context) (entity.Rates, error) {
	results := make([][]entity.CurrencyRate, len(tables))
	errs := make([]error, len(tables))

	var g errgroup.Group
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			// failures are collected per table, never returned, so one
			// table cannot cancel the other
			results[i], errs[i] = r.source.FetchTable(ctx, table)
			return nil
		})
	}
	_ = g.Wait()

	rates := make(entity.Rates)
	var failed []error
	for i, table := range tables {
		if errs[i] != nil {
			r.logger.Warn("Failed to fetch rate table", map[string]interface{}{
				"table": string(table),
				"error": errs[i].Error(),
			})
			failed = append(failed, fmt.Errorf("table %s: %w", table, errs[i]))
			continue
		}
		for _, rate := range results[i] {
			rates[rate.Code] = rate
		}
	}

	if len(failed) == len(tables) {
		r.logger.Error("Failed to fetch any rate table", map[string]interface{}{
			"error": errors.Join(failed...).Error(),
		})
		return nil, apperror.DataFetch("failed to fetch currency rates", "", errors.Join(failed...))
	}

	rates[r.baseCurrency] = entity.BaseRate(r.baseCurrency)

	r.logger.Debug("Current rates fetched", map[string]interface{}{
		"count":         len(rates),
		"failed_tables": len(failed),
	})

	return rates, nil
}

// GetHistoricalSeries returns the rates of code published within [start, end].
// The base currency is synthesized without a network call; a period with no
// publications yields an empty series that still carries the queried bounds.
func (r *NBPRateRepository) GetHistoricalSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.InvalidInput("currency code is required", "code")
	}
	if !entity.IsCurrencyCode(code) {
		return nil, apperror.InvalidInput(fmt.Sprintf("currency code %q must be 3 letters", code), "code")
	}
	if !start.IsValid() || !end.IsValid() {
		return nil, apperror.InvalidInput("invalid date range", "start")
	}
	if start.After(end) {
		return nil, apperror.InvalidInput("start date must not be after end date", "start")
	}

	if code == r.baseCurrency {
		return entity.BaseSeries(code, start, end), nil
	}

	rates, err := r.GetCurrentRates(ctx)
	if err != nil {
		return nil, err
	}
	table := rates.TableOf(code)

	points, err := r.source.FetchSeries(ctx, table, code, start, end)
	if err != nil {
		if apperror.IsNotFound(err) {
			r.logger.Warn("No historical data for period", map[string]interface{}{
				"currency": code,
				"start":    start.String(),
				"end":      end.String(),
			})
			return entity.EmptySeries(code, start, end), nil
		}

		r.logger.Error("Failed to fetch historical data", map[string]interface{}{
			"currency": code,
			"table":    string(table),
			"error":    err.Error(),
		})
		if apperror.KindOf(err) != "" {
			return nil, err
		}
		return nil, apperror.DataFetch("failed to fetch historical data", code, err)
	}

	return entity.NewHistoricalSeries(code, start, end, points), nil
}

// GetPairRate returns the cross-rate of from expressed in to.
// No shortcut exists for from == to; both codes must be in the current table.
func (r *NBPRateRepository) GetPairRate(ctx context.Context, from, to string) (float64, error) {
	rates, err := r.GetCurrentRates(ctx)
	if err != nil {
		return 0, err
	}

	return rates.PairRate(strings.ToUpper(from), strings.ToUpper(to))
}
