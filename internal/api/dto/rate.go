package dto

import (
	"time"

	"github.com/pullbill/pullbill/internal/domain/rate"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/pullbill/pullbill/internal/validator"
	"github.com/shopspring/decimal"
)

// SetRateRequest represents the request payload for setting an exchange rate
type SetRateRequest struct {
	Currency string          `json:"currency" binding:"required" validate:"required" example:"USD"`
	Rate     decimal.Decimal `json:"rate" binding:"required" example:"200000000"`
}

// RateResponse represents the exchange rate response structure
type RateResponse struct {
	Currency  string          `json:"currency" example:"USD"`
	Rate      decimal.Decimal `json:"rate" example:"200000000"`
	UpdatedAt time.Time       `json:"updated_at" example:"2024-03-20T15:04:05Z"`
	UpdatedBy string          `json:"updated_by"`
}

// Convert domain ExchangeRate to RateResponse
func ToRateResponse(r *rate.ExchangeRate) *RateResponse {
	return &RateResponse{
		Currency:  r.Currency,
		Rate:      r.Rate,
		UpdatedAt: r.UpdatedAt,
		UpdatedBy: r.UpdatedBy.String(),
	}
}

// Convert SetRateRequest to a domain ExchangeRate
func (r *SetRateRequest) ToExchangeRate(updatedBy types.Address, now time.Time) *rate.ExchangeRate {
	return &rate.ExchangeRate{
		Currency:  r.Currency,
		Rate:      r.Rate,
		UpdatedAt: now,
		UpdatedBy: updatedBy,
	}
}

// Request validations
func (r *SetRateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Rate.IsPositive() {
		return ierr.NewError("rate must be positive").
			WithHint("Exchange rate must be greater than zero").
			WithReportableDetails(map[string]any{"rate": r.Rate.String()}).
			Mark(ierr.ErrValidation)
	}
	if !r.Rate.IsInteger() {
		return ierr.NewError("rate must be integral").
			WithHintf("Exchange rate is a fixed-point integer scaled by 10^%d", types.RateDecimals).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ListRatesResponse represents the list of registered exchange rates
type ListRatesResponse struct {
	Items []*RateResponse `json:"items"`
	Total int             `json:"total"`
}
