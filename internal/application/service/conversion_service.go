package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// amountPlaces is the precision converted amounts are rounded to
const amountPlaces = 4

// ConversionRequest is an amount to convert between two currencies
type ConversionRequest struct {
	Amount decimal.Decimal
	From   string
	To     string
}

// ConversionResult represents a converted amount with the rate that was applied
type ConversionResult struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            float64         `json:"rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	RateDate        string          `json:"rate_date,omitempty"`
}

// ConversionService handles currency conversion and cross-rate history
type ConversionService struct {
	repo   repository.RateRepository
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(repo repository.RateRepository, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		repo:   repo,
		logger: log,
	}
}

func normalize(req ConversionRequest) (ConversionRequest, error) {
	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	req.To = strings.ToUpper(strings.TrimSpace(req.To))

	if req.From == "" {
		return req, apperror.InvalidInput("source currency is required", "from")
	}
	if req.To == "" {
		return req, apperror.InvalidInput("target currency is required", "to")
	}
	if !req.Amount.IsPositive() {
		return req, apperror.InvalidInput("amount must be greater than zero", "amount")
	}
	return req, nil
}

// Convert converts an amount at the current rates
func (s *ConversionService) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	requestID := middleware.GetRequestID(ctx)

	if req.From == req.To {
		return s.result(req, 1.0, ""), nil
	}

	// one table fetch serves both the rate and its publication date
	rates, err := s.repo.GetCurrentRates(ctx)
	if err != nil {
		s.logger.Error("Failed to get rates for conversion", map[string]interface{}{
			"request_id": requestID,
			"from":       req.From,
			"to":         req.To,
			"error":      err.Error(),
		})
		return nil, err
	}

	rate, err := rates.PairRate(req.From, req.To)
	if err != nil {
		return nil, err
	}

	result := s.result(req, rate, rates.LastUpdate(req.From, req.To))

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id":       requestID,
		"from":             req.From,
		"to":               req.To,
		"amount":           req.Amount.String(),
		"rate":             rate,
		"converted_amount": result.ConvertedAmount.String(),
	})

	return result, nil
}

// ConvertOnDate converts an amount at the rates published on date. Both
// currencies must have a publication on that exact date.
func (s *ConversionService) ConvertOnDate(ctx context.Context, req ConversionRequest, date civil.Date) (*ConversionResult, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	if !date.IsValid() {
		return nil, apperror.InvalidInput("invalid date", "date")
	}

	if req.From == req.To {
		return s.result(req, 1.0, date.String()), nil
	}

	pair, err := s.PairHistory(ctx, req.From, req.To, date, date)
	if err != nil {
		return nil, err
	}

	rate, ok := pair.RateOn(date)
	if !ok {
		return nil, apperror.NoData(fmt.Sprintf("no exchange rate published on %s", date), req.From+"/"+req.To)
	}

	return s.result(req, rate, date.String()), nil
}

// PairHistory returns the cross-rate of from in to for every date both
// currencies were published within [start, end]
func (s *ConversionService) PairHistory(ctx context.Context, from, to string, start, end civil.Date) (*entity.PairSeries, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	var fromSeries, toSeries *entity.HistoricalSeries

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromSeries, err = s.repo.GetHistoricalSeries(gctx, from, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		toSeries, err = s.repo.GetHistoricalSeries(gctx, to, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to get pair history", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"from":       from,
			"to":         to,
			"error":      err.Error(),
		})
		return nil, err
	}

	pair := entity.AlignSeries(fromSeries, toSeries)
	if pair.IsEmpty() {
		s.logger.Info("No common dates for currency pair", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"from":       from,
			"to":         to,
			"start":      start.String(),
			"end":        end.String(),
		})
	}

	return pair, nil
}

func (s *ConversionService) result(req ConversionRequest, rate float64, rateDate string) *ConversionResult {
	return &ConversionResult{
		From:            req.From,
		To:              req.To,
		Amount:          req.Amount,
		Rate:            rate,
		ConvertedAmount: req.Amount.Mul(decimal.NewFromFloat(rate)).Round(amountPlaces),
		RateDate:        rateDate,
	}
}
