package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
)

// RatesCache holds one snapshot of the current rate table with an expiration.
// Snapshots are copied on the way in and out, so callers never share a map.
type RatesCache struct {
	rates      entity.Rates
	storedAt   time.Time
	expiration time.Duration
	mutex      sync.RWMutex
}

// NewRatesCache creates a new rates cache
func NewRatesCache(expiration time.Duration) *RatesCache {
	if expiration <= 0 {
		expiration = 15 * time.Minute
	}
	return &RatesCache{expiration: expiration}
}

// Get returns the cached table if present and not expired
func (c *RatesCache) Get() (entity.Rates, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.rates == nil || time.Since(c.storedAt) > c.expiration {
		return nil, false
	}

	return c.rates.Clone(), true
}

// Put replaces the cached table
func (c *RatesCache) Put(rates entity.Rates) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.rates = rates.Clone()
	c.storedAt = time.Now()
}

// Clear drops the cached table
func (c *RatesCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.rates = nil
}
