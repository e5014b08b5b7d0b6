package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
)

const (
	// maxRangeDays is the longest span the NBP API answers in one query
	maxRangeDays = 93

	defaultPeriodDays = 30
)

var errorTitles = map[apperror.Kind]string{
	apperror.KindInvalidCurrency: "Invalid currency",
	apperror.KindInvalidInput:    "Invalid request",
	apperror.KindNoData:          "No data available",
	apperror.KindAPI:             "NBP API error",
	apperror.KindDataFetch:       "Rate data unavailable",
	apperror.KindConversion:      "Conversion failed",
}

func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}

// sendError maps err to its HTTP status and writes the error body.
// Errors without a kind are reported without their internal message.
func sendError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	status := apperror.HTTPStatus(err)

	title, known := errorTitles[apperror.KindOf(err)]
	description := err.Error()
	if !known {
		title = "Internal server error"
		description = "An unexpected error occurred. Please try again later."
	}

	fields := map[string]interface{}{
		"request_id": requestID,
		"status":     status,
		"error":      err.Error(),
	}
	if status >= http.StatusInternalServerError {
		log.Error(title, fields)
	} else {
		log.Warn(title, fields)
	}

	sendErrorResponse(w, log, title, description, status, requestID)
}

// parseCode normalizes a currency code taken from the URL and rejects
// anything other than three ASCII letters
func parseCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !entity.IsCurrencyCode(code) {
		return "", apperror.InvalidCurrency("currency code should be 3 letters (e.g., EUR, USD, CHF)", raw)
	}
	return code, nil
}

func parseDate(q url.Values, name string) (civil.Date, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return civil.Date{}, apperror.InvalidInput(fmt.Sprintf("the '%s' query parameter is required", name), name)
	}

	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, apperror.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw), name)
	}
	return d, nil
}

// parseRange reads start and end, or a days period ending today when both are absent
func parseRange(q url.Values, now time.Time) (civil.Date, civil.Date, error) {
	if q.Get("start") == "" && q.Get("end") == "" {
		days := defaultPeriodDays
		if raw := q.Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return civil.Date{}, civil.Date{}, apperror.InvalidInput("days must be a non-negative integer", "days")
			}
			days = n
		}
		start, end := entity.PeriodRange(days, now)
		return start, end, checkSpan(start, end)
	}

	start, err := parseDate(q, "start")
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	end, err := parseDate(q, "end")
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	if start.After(end) {
		return civil.Date{}, civil.Date{}, apperror.InvalidInput("start date must not be after end date", "start")
	}

	return start, end, checkSpan(start, end)
}

func checkSpan(start, end civil.Date) error {
	span := int(end.In(time.UTC).Sub(start.In(time.UTC)).Hours()/24) + 1
	if span > maxRangeDays {
		return apperror.InvalidInput(fmt.Sprintf("date range must not exceed %d days", maxRangeDays), "end")
	}
	return nil
}
