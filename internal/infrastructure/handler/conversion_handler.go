package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/damon-houk/nbp-rate-service/internal/application/service"
	"github.com/damon-houk/nbp-rate-service/internal/apperror"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/nbp-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ConversionHandler handles HTTP requests for currency conversion and pair history
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
	now     func() time.Time
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
		now:     time.Now,
	}
}

// Convert handles converting an amount, at the current rates or on a given date
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	rawAmount := strings.TrimSpace(q.Get("amount"))
	if rawAmount == "" {
		sendErrorResponse(w, h.logger, "Missing amount parameter",
			"The 'amount' query parameter is required", http.StatusBadRequest, requestID)
		return
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		sendError(w, h.logger, apperror.InvalidInput("amount must be a number", "amount"), requestID)
		return
	}

	req := service.ConversionRequest{
		Amount: amount,
		From:   q.Get("from"),
		To:     q.Get("to"),
	}

	h.logger.Debug("Handling convert request", map[string]interface{}{
		"request_id": requestID,
		"from":       req.From,
		"to":         req.To,
		"amount":     rawAmount,
	})

	var result *service.ConversionResult
	if q.Get("date") != "" {
		date, dateErr := parseDate(q, "date")
		if dateErr != nil {
			sendError(w, h.logger, dateErr, requestID)
			return
		}
		result, err = h.service.ConvertOnDate(r.Context(), req, date)
	} else {
		result, err = h.service.Convert(r.Context(), req)
	}
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, result)
}

// PairHistory handles retrieving the aligned cross-rate history of two currencies
func (h *ConversionHandler) PairHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)

	from, err := parseCode(vars["from"])
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}
	to, err := parseCode(vars["to"])
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	start, end, err := parseRange(r.URL.Query(), h.now())
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	pair, err := h.service.PairHistory(r.Context(), from, to, start, end)
	if err != nil {
		sendError(w, h.logger, err, requestID)
		return
	}

	resp := PairHistoryResponse{
		From:      pair.From,
		To:        pair.To,
		StartDate: start,
		EndDate:   end,
		Data:      pair.Points,
	}
	if stats, ok := pair.Stats(); ok {
		resp.Stats = &stats
	} else {
		resp.NoData = true
		resp.Message = entity.NoDataMessage
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)
	router.HandleFunc("/pairs/{from}/{to}/history", h.PairHistory).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
			"GET /pairs/{from}/{to}/history",
		},
	})
}
