// Package repository internal/domain/repository/rate_repository.go
package repository

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
)

// RateRepository defines the interface for current and historical rate access
type RateRepository interface {
	// GetCurrentRates returns the merged table A and B rates plus the base currency
	GetCurrentRates(ctx context.Context) (entity.Rates, error)

	// GetHistoricalSeries returns the rates of code published within [start, end]
	GetHistoricalSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error)

	// GetPairRate returns the cross-rate of from expressed in to
	GetPairRate(ctx context.Context, from, to string) (float64, error)
}
