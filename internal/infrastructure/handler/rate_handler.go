// Package handler internal/infrastructure/handler/rate_handler.go
package handler

import (
	"net/http"

	"github.com/damon-houk/nbp-rate-service/internal/application/service"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RateHandler handles HTTP requests for current and historical rates
type RateHandler struct {
	service      *service.RateService
	baseCurrency string
	logger       logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(service *service.RateService, baseCurrency string, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		service:      service,
		baseCurrency: baseCurrency,
		logger:       log,
	}
}

// ListCurrencies handles listing every known currency
func (h *RateHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rates, err := h.service.ListCurrencies(r.Context())
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	resp := make([]CurrencyResponse, 0, len(rates))
	for _, rate := range rates {
		resp = append(resp, CurrencyResponse{Code: rate.Code, Name: rate.Name, Table: rate.Table})
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// GetRates handles retrieving the merged current rate table
func (h *RateHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rates, err := h.service.GetCurrentRates(r.Context())
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, RatesResponse{
		Base:  h.baseCurrency,
		Count: len(rates),
		Rates: rates.Sorted(),
	})
}

// GetRate handles retrieving the current rate of one currency
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code, err := parseCode(mux.Vars(r)["code"])
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	rate, err := h.service.GetRate(r.Context(), code)
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, rate)
}

// GetHistory handles retrieving the rate history of one currency
func (h *RateHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code, err := parseCode(mux.Vars(r)["code"])
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}
	q := r.URL.Query()

	start, err := parseDate(q, "start")
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}
	end, err := parseDate(q, "end")
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}
	if !start.After(end) {
		if err := checkSpan(start, end); err != nil {
			sendError(w, h.logger, err, requestID)
			return
		}
	}

	series, err := h.service.GetHistoricalSeries(r.Context(), code, start, end)
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, series)
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/currencies", h.ListCurrencies).Methods(http.MethodGet)
	router.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)
	router.HandleFunc("/rates/{code}", h.GetRate).Methods(http.MethodGet)
	router.HandleFunc("/rates/{code}/history", h.GetHistory).Methods(http.MethodGet)

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /currencies",
			"GET /rates",
			"GET /rates/{code}",
			"GET /rates/{code}/history",
		},
	})
}
