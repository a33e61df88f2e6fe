package types

import "github.com/shopspring/decimal"

// Fixed-point scales used by the fiat to token conversion. A rate of
// 2 * 10^8 means 1 token = 0.02 fiat units; charging C cents moves
// C * 10^(TokenDecimals+RateDecimals-CentsDecimals) / rate base units.
const (
	// TokenDecimals is the base-unit scale of the token ledger.
	TokenDecimals = 18
	// RateDecimals is the fixed-point scale of stored exchange rates.
	RateDecimals = 10
	// CentsDecimals is the scale of fiat amounts (cents per whole unit).
	CentsDecimals = 2
)

// ConversionScale is 10^(TokenDecimals + RateDecimals - CentsDecimals),
// the numerator multiplier of the conversion formula.
var ConversionScale = decimal.New(1, TokenDecimals+RateDecimals-CentsDecimals)
