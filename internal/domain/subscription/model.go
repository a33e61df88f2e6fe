package subscription

import (
	"github.com/pullbill/pullbill/internal/types"
)

// Subscription is the billing record for one (client, beneficiary) pair.
// The pair is the primary key; a fresh registration for the same pair
// silently replaces the previous record.
type Subscription struct {
	// Client is the paying account that signed the consent message
	Client types.Address `json:"client"`

	// Beneficiary is the receiving merchant account
	Beneficiary types.Address `json:"beneficiary"`

	// MerchantID is an opaque caller-side correlation id, never signed
	MerchantID string `json:"merchant_id"`

	// PaymentID is an opaque id bound into the cancellation consent message
	PaymentID string `json:"payment_id"`

	// Currency is the fiat currency code the amounts are denominated in
	Currency string `json:"currency"`

	// InitialAmountCents is the one-time signup fee in fiat cents.
	// Permanently zeroed once charged.
	InitialAmountCents uint64 `json:"initial_amount_cents"`

	// RecurringAmountCents is the fiat amount charged per period
	RecurringAmountCents uint64 `json:"recurring_amount_cents"`

	// FrequencySeconds is the billing period length
	FrequencySeconds uint64 `json:"frequency_seconds"`

	// RemainingPayments counts down by one per successful recurring charge
	RemainingPayments uint64 `json:"remaining_payments"`

	// StartTime is the epoch second the first period becomes due
	StartTime uint64 `json:"start_time"`

	// NextPaymentTime advances by exactly one frequency per recurring
	// charge; initialized to StartTime
	NextPaymentTime uint64 `json:"next_payment_time"`

	// LastPaymentTime is zero until the first successful charge
	LastPaymentTime uint64 `json:"last_payment_time"`

	// CancelTime is zero while active; set once on cancellation and
	// never cleared
	CancelTime uint64 `json:"cancel_time"`
}

// Exists reports whether the record describes a real registration.
// A record with both amounts zero is the "no such subscription" sentinel.
func (s *Subscription) Exists() bool {
	return s != nil && (s.InitialAmountCents > 0 || s.RecurringAmountCents > 0)
}

// Cancelled reports whether the client has revoked future billing.
func (s *Subscription) Cancelled() bool {
	return s.CancelTime != 0
}
