package handler

import (
	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
)

// RatesResponse represents the response for the current rates endpoint
type RatesResponse struct {
	Base  string                `json:"base"`
	Count int                   `json:"count"`
	Rates []entity.CurrencyRate `json:"rates"`
}

// CurrencyResponse is one entry of the currencies list
type CurrencyResponse struct {
	Code  string       `json:"code"`
	Name  string       `json:"name"`
	Table entity.Table `json:"table,omitempty"`
}

// PairHistoryResponse represents the response for the pair history endpoint.
// NoData is set when the two currencies share no publication date in range;
// Stats is only present otherwise.
type PairHistoryResponse struct {
	From      string             `json:"from"`
	To        string             `json:"to"`
	StartDate civil.Date         `json:"start_date"`
	EndDate   civil.Date         `json:"end_date"`
	Data      []entity.RatePoint `json:"data"`
	Stats     *entity.PairStats  `json:"stats,omitempty"`
	NoData    bool               `json:"no_data"`
	Message   string             `json:"message,omitempty"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
