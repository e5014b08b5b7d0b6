package entity

import (
	"sort"

	"github.com/damon-houk/nbp-rate-service/internal/apperror"
)

// Table identifies the NBP table a rate was published in
type Table string

const (
	// TableA holds the major currencies
	TableA Table = "A"
	// TableB holds the other currencies
	TableB Table = "B"
	// TableNone marks the base currency, which is not published in any table
	TableNone Table = ""
)

// DefaultBaseCurrency is the currency all NBP rates are quoted against
const DefaultBaseCurrency = "PLN"

// CurrencyRate represents one currency's mid rate against the base currency
type CurrencyRate struct {
	Code       string  `json:"code"`
	Rate       float64 `json:"rate"`
	Table      Table   `json:"table,omitempty"`
	Name       string  `json:"name"`
	LastUpdate string  `json:"last_update,omitempty"`
}

// IsCurrencyCode reports whether code is a three-letter ISO 4217 code in upper case
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// BaseRate returns the synthetic entry for the base currency
func BaseRate(code string) CurrencyRate {
	return CurrencyRate{Code: code, Rate: 1.0, Table: TableNone}
}

// Rates maps currency codes to their current rate
type Rates map[string]CurrencyRate

// Codes returns the currency codes in ascending order
func (r Rates) Codes() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Sorted returns the rates ordered by currency code
func (r Rates) Sorted() []CurrencyRate {
	out := make([]CurrencyRate, 0, len(r))
	for _, code := range r.Codes() {
		out = append(out, r[code])
	}
	return out
}

// Clone returns a shallow copy so callers cannot mutate a shared table
func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// TableOf returns the table a code was published in, defaulting to table A
// when the code is unknown or belongs to no table
func (r Rates) TableOf(code string) Table {
	if rate, ok := r[code]; ok && rate.Table != TableNone {
		return rate.Table
	}
	return TableA
}

// PairRate returns how many units of to one unit of from is worth.
// Both rates are quoted against the same base so their ratio is the cross-rate.
func (r Rates) PairRate(from, to string) (float64, error) {
	fromRate, ok := r[from]
	if !ok {
		return 0, apperror.InvalidCurrency("invalid source currency", from)
	}

	toRate, ok := r[to]
	if !ok {
		return 0, apperror.InvalidCurrency("invalid target currency", to)
	}

	if toRate.Rate == 0 {
		return 0, apperror.Conversion("target currency has a zero rate", from, to, nil)
	}

	return fromRate.Rate / toRate.Rate, nil
}

// LastUpdate returns the publication date of the first listed code that has one
func (r Rates) LastUpdate(codes ...string) string {
	for _, code := range codes {
		if rate, ok := r[code]; ok && rate.LastUpdate != "" {
			return rate.LastUpdate
		}
	}
	return ""
}
