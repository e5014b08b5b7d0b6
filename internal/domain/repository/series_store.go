package repository

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
)

// ErrSeriesNotFound is returned by a SeriesStore that holds no entry for a query
var ErrSeriesNotFound = errors.New("series not found")

// SeriesStore defines the interface for persisted historical series
type SeriesStore interface {
	// FindSeries returns the stored series for code and the exact range
	FindSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error)

	// StoreSeries saves a series keyed by its currency and bounds
	StoreSeries(ctx context.Context, series *entity.HistoricalSeries) error
}
