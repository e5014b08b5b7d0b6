package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

var _ repository.SeriesStore = (*BadgerSeriesStore)(nil)

// BadgerSeriesStore implements the series store interface using BadgerDB
type BadgerSeriesStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerSeriesStore creates a new BadgerDB series store. Entries expire
// after ttl; a non-positive ttl keeps them forever.
func NewBadgerSeriesStore(db *badger.DB, ttl time.Duration) *BadgerSeriesStore {
	return &BadgerSeriesStore{db: db, ttl: ttl}
}

// OpenBadger opens a BadgerDB at path, or an in-memory one when path is empty
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return db, nil
}

func seriesKey(code string, start, end civil.Date) []byte {
	return []byte(fmt.Sprintf("series:%s:%s:%s", strings.ToUpper(code), start, end))
}

// StoreSeries saves a series keyed by its currency and bounds
func (s *BadgerSeriesStore) StoreSeries(ctx context.Context, series *entity.HistoricalSeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	entry := badger.NewEntry(seriesKey(series.Currency, series.StartDate, series.EndDate), data)
	if s.ttl > 0 {
		entry = entry.WithTTL(s.ttl)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to store series: %w", err)
	}

	return nil
}

// FindSeries retrieves the series stored for code and exactly [start, end]
func (s *BadgerSeriesStore) FindSeries(ctx context.Context, code string, start, end civil.Date) (*entity.HistoricalSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var series entity.HistoricalSeries

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(seriesKey(code, start, end))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &series)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrSeriesNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve series: %w", err)
	}

	return &series, nil
}
