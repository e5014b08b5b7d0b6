package service

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
)

// NBPAPI defines the interface for interacting with the NBP exchange rate API
type NBPAPI interface {
	// FetchTable retrieves the latest published rates of one table
	FetchTable(ctx context.Context, table entity.Table) ([]entity.CurrencyRate, error)

	// FetchSeries retrieves the mid rates of code in table published within [start, end].
	// A period without publications is reported as an NBP API 404 error.
	FetchSeries(ctx context.Context, table entity.Table, code string, start, end civil.Date) ([]entity.RatePoint, error)
}
