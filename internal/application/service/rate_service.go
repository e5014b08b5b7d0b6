// Package service internal/application/service/rate_service.go
package service

import (
	"context"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/middleware"
)

// RateService handles read access to current and historical rates
type RateService struct {
	repo   repository.RateRepository
	logger logger.Logger
}

// NewRateService creates a new rate service
func NewRateService(repo repository.RateRepository, log logger.Logger) *RateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateService{repo: repo, logger: log}
}

// ListCurrencies returns every known currency ordered by code
func (s *RateService) ListCurrencies(ctx context.Context) ([]entity.CurrencyRate, error) {
	rates, err := s.GetCurrentRates(ctx)
	if err != nil {
		return nil, err
	}
	return rates.Sorted(), nil
}

// GetCurrentRates returns the merged current rate table
func (s *RateService) GetCurrentRates(ctx context.Context) (entity.Rates, error) {
	rates, err := s.repo.GetCurrentRates(ctx)
	if err != nil {
		s.logger.Error("Failed to get current rates", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, err
	}
	return rates, nil
}

// GetRate returns the current rate of one currency
func (s *RateService) GetRate(ctx context.Context, code string) (entity.CurrencyRate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	rates, err := s.GetCurrentRates(ctx)
	if err != nil {
		return entity.CurrencyRate{}, err
	}

	rate, ok := rates[code]
	if !ok {
		return entity.CurrencyRate{}, apperror.InvalidCurrency("unknown currency", code)
	}
	return rate, nil
}

// GetHistoricalSeries returns the rate history of code within [start, end]
func (s *RateService) GetHistoricalSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Debug("Fetching historical series", map[string]interface{}{
		"request_id": requestID,
		"currency":   code,
		"start":      start.String(),
		"end":        end.String(),
	})

	series, err := s.repo.GetHistoricalSeries(ctx, code, start, end)
	if err != nil {
		s.logger.Error("Failed to get historical series", map[string]interface{}{
			"request_id": requestID,
			"currency":   code,
			"error":      err.Error(),
		})
		return nil, err
	}

	if series.IsEmpty() {
		s.logger.Info("Historical series is empty", map[string]interface{}{
			"request_id": requestID,
			"currency":   series.Currency,
			"start":      start.String(),
			"end":        end.String(),
		})
	}

	return series, nil
}
