// Package apperror internal/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of a failure
type Kind string

const (
	// KindDataFetch is a transport-level failure or an unusable response
	KindDataFetch Kind = "DATA_FETCH"
	// KindAPI is an HTTP error status returned by the NBP API
	KindAPI Kind = "NBP_API"
	// KindInvalidCurrency is a currency code missing from the current rate table
	KindInvalidCurrency Kind = "INVALID_CURRENCY"
	// KindConversion is a conversion that could not be computed
	KindConversion Kind = "CONVERSION"
	// KindConfiguration is an invalid configuration value
	KindConfiguration Kind = "CONFIGURATION"
	// KindInvalidInput is malformed caller input
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindNoData is a requested data point that was never published
	KindNoData Kind = "NO_DATA"
)

// Error is the tagged error value used across the service.
// Only the fields relevant to Kind are populated.
type Error struct {
	Kind         Kind
	Message      string
	StatusCode   int
	Endpoint     string
	Currency     string
	FromCurrency string
	ToCurrency   string
	Parameter    string
	Err          error
}

func (e *Error) Error() string {
	msg := e.Message

	switch e.Kind {
	case KindAPI:
		if e.StatusCode != 0 {
			msg += fmt.Sprintf(" (status code: %d)", e.StatusCode)
		}
		if e.Endpoint != "" {
			msg += " while accessing " + e.Endpoint
		}
	case KindDataFetch, KindInvalidCurrency, KindNoData:
		if e.Currency != "" {
			msg += " for currency " + e.Currency
		}
	case KindConversion:
		if e.FromCurrency != "" && e.ToCurrency != "" {
			msg += fmt.Sprintf(" for conversion from %s to %s", e.FromCurrency, e.ToCurrency)
		}
	case KindConfiguration, KindInvalidInput:
		if e.Parameter != "" {
			msg += " (parameter: " + e.Parameter + ")"
		}
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so sentinel-style comparisons work
// with errors.Is(err, &Error{Kind: KindAPI}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.StatusCode == 0 || t.StatusCode == e.StatusCode)
}

// DataFetch creates a transport-level failure
func DataFetch(message, currency string, err error) *Error {
	return &Error{Kind: KindDataFetch, Message: message, Currency: currency, Err: err}
}

// API creates an NBP API failure carrying the status code and endpoint
func API(message string, statusCode int, endpoint string) *Error {
	return &Error{Kind: KindAPI, Message: message, StatusCode: statusCode, Endpoint: endpoint}
}

// InvalidCurrency reports a code that is absent from the current rate table
func InvalidCurrency(message, currency string) *Error {
	return &Error{Kind: KindInvalidCurrency, Message: message, Currency: currency}
}

// Conversion reports a conversion between two currencies that failed
func Conversion(message, from, to string, err error) *Error {
	return &Error{Kind: KindConversion, Message: message, FromCurrency: from, ToCurrency: to, Err: err}
}

// Configuration reports an invalid configuration parameter
func Configuration(message, parameter string) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Parameter: parameter}
}

// InvalidInput reports a malformed caller-supplied parameter
func InvalidInput(message, parameter string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Parameter: parameter}
}

// NoData reports a data point that does not exist upstream
func NoData(message, currency string) *Error {
	return &Error{Kind: KindNoData, Message: message, Currency: currency}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err's chain holds an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsNotFound reports whether err is an NBP API 404
func IsNotFound(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == KindAPI && appErr.StatusCode == http.StatusNotFound
}

// HTTPStatus maps an error to the status code the HTTP layer answers with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidCurrency, KindInvalidInput:
		return http.StatusBadRequest
	case KindNoData:
		return http.StatusNotFound
	case KindAPI:
		return http.StatusBadGateway
	case KindConversion:
		return http.StatusUnprocessableEntity
	case KindDataFetch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
