package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "explicit bounds", query: "start=2024-01-01&end=2024-01-31", wantStart: "2024-01-01", wantEnd: "2024-01-31"},
		{name: "default period", query: "", wantStart: "2024-03-01", wantEnd: "2024-03-31"},
		{name: "days period", query: "days=90", wantStart: "2024-01-01", wantEnd: "2024-03-31"},
		{name: "zero days is today only", query: "days=0", wantStart: "2024-03-31", wantEnd: "2024-03-31"},
		{name: "negative days", query: "days=-3", wantErr: true},
		{name: "non numeric days", query: "days=week", wantErr: true},
		{name: "too many days", query: "days=93", wantErr: true},
		{name: "missing end", query: "start=2024-01-01", wantErr: true},
		{name: "reversed", query: "start=2024-02-01&end=2024-01-01", wantErr: true},
		{name: "span of 93 days", query: "start=2024-01-01&end=2024-04-02", wantStart: "2024-01-01", wantEnd: "2024-04-02"},
		{name: "span of 94 days", query: "start=2024-01-01&end=2024-04-03", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			start, end, err := parseRange(q, now)

			if tt.wantErr {
				assert.True(t, apperror.IsKind(err, apperror.KindInvalidInput), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.String())
			assert.Equal(t, tt.wantEnd, end.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate(url.Values{"date": {" 2024-01-03 "}}, "date")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 3}, d)

	_, err = parseDate(url.Values{"date": {"2024-02-30"}}, "date")
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "date", appErr.Parameter)
}

func TestParseCode(t *testing.T) {
	code, err := parseCode(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	for _, raw := range []string{"", "US", "ABCDEFGH", "ZZ?", "U/D", "E1R"} {
		_, err := parseCode(raw)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidCurrency), raw)
	}
}

func TestSendError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.DebugLevel)

	t.Run("known kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendError(w, log, apperror.InvalidCurrency("unknown currency", "XYZ"), "req-1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, ErrorResponse{
			Error:       "Invalid currency",
			Status:      http.StatusBadRequest,
			Description: "unknown currency for currency XYZ",
			RequestID:   "req-1",
		}, resp)
	})

	t.Run("unknown errors hide internals", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendError(w, log, errors.New("nil pointer somewhere"), "req-2")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "nil pointer")
		assert.Contains(t, buf.String(), "nil pointer", "the cause is still logged")
	})
}
