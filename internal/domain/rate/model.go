package rate

import (
	"time"

	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
)

// ExchangeRate is the fixed-point fiat-per-token conversion factor for
// one currency, scaled by 10^RateDecimals. Rates are integral and
// strictly positive; an absent currency has no rate at all.
type ExchangeRate struct {
	// Currency is the fiat currency code, e.g. "USD"
	Currency string `json:"currency"`

	// Rate is the scaled conversion factor, e.g. 2*10^8 for 0.02 fiat
	// per token
	Rate decimal.Decimal `json:"rate"`

	// UpdatedAt is the time of the last administrator write
	UpdatedAt time.Time `json:"updated_at"`

	// UpdatedBy is the administrator account that wrote the rate
	UpdatedBy types.Address `json:"updated_by"`
}
