// Package mocks internal/mocks/mocks.go
package mocks

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateRepository mocks the RateRepository interface
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) GetCurrentRates(ctx context.Context) (entity.Rates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.Rates), args.Error(1)
}

func (m *MockRateRepository) GetHistoricalSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	args := m.Called(ctx, code, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.HistoricalSeries), args.Error(1)
}

func (m *MockRateRepository) GetPairRate(ctx context.Context, from, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

// MockSeriesStore mocks the SeriesStore interface
type MockSeriesStore struct {
	mock.Mock
}

func (m *MockSeriesStore) FindSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	args := m.Called(ctx, code, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.HistoricalSeries), args.Error(1)
}

func (m *MockSeriesStore) StoreSeries(ctx context.Context, series *entity.HistoricalSeries) error {
	args := m.Called(ctx, series)
	return args.Error(0)
}

// MockNBPAPI mocks the NBP API client
type MockNBPAPI struct {
	mock.Mock
}

func (m *MockNBPAPI) FetchTable(ctx context.Context, table entity.Table) ([]entity.CurrencyRate, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyRate), args.Error(1)
}

func (m *MockNBPAPI) FetchSeries(ctx context.Context, table entity.Table, code string, start, end civil.Date) ([]entity.RatePoint, error) {
	args := m.Called(ctx, table, code, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RatePoint), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}

// NewQuietLogger returns a MockLogger that accepts any log call
func NewQuietLogger() *MockLogger {
	l := &MockLogger{}
	for _, method := range []string{"Debug", "Info", "Warn", "Error"} {
		l.On(method, mock.Anything, mock.Anything).Maybe()
	}
	return l
}
