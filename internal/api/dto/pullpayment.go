package dto

import (
	"github.com/pullbill/pullbill/internal/consent"
	"github.com/pullbill/pullbill/internal/domain/subscription"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/pullbill/pullbill/internal/validator"
	"github.com/shopspring/decimal"
)

// RegisterPullPaymentRequest represents the request payload for
// registering a signed pull-payment subscription. The signature covers
// only the economically meaningful terms; merchant id, client address
// and payment id are relayed unsigned.
type RegisterPullPaymentRequest struct {
	Signature            string `json:"signature" binding:"required" validate:"required"`
	MerchantID           string `json:"merchant_id" binding:"required" validate:"required" example:"merchantID_1"`
	PaymentID            string `json:"payment_id" binding:"required" validate:"required" example:"paymentID_1"`
	Client               string `json:"client" binding:"required" validate:"required"`
	Beneficiary          string `json:"beneficiary" binding:"required" validate:"required"`
	Currency             string `json:"currency" binding:"required" validate:"required" example:"USD"`
	InitialAmountCents   uint64 `json:"initial_amount_cents"`
	RecurringAmountCents uint64 `json:"recurring_amount_cents" binding:"required"`
	FrequencySeconds     uint64 `json:"frequency_seconds" binding:"required"`
	RemainingPayments    uint64 `json:"remaining_payments" binding:"required"`
	StartTime            uint64 `json:"start_time" binding:"required"`
}

// ExecutePullPaymentRequest represents the request payload for executing
// a due pull payment. The beneficiary context comes from the caller.
type ExecutePullPaymentRequest struct {
	Client    string `json:"client" binding:"required" validate:"required"`
	PaymentID string `json:"payment_id" binding:"required" validate:"required"`
}

// CancelPullPaymentRequest represents the request payload for cancelling
// a subscription with the client's signed cancellation consent.
type CancelPullPaymentRequest struct {
	Signature   string `json:"signature" binding:"required" validate:"required"`
	PaymentID   string `json:"payment_id" binding:"required" validate:"required"`
	Client      string `json:"client" binding:"required" validate:"required"`
	Beneficiary string `json:"beneficiary" binding:"required" validate:"required"`
}

// SubscriptionResponse represents the stored billing record
type SubscriptionResponse struct {
	*subscription.Subscription
}

// ExecutionResponse reports a successful charge and the record it left behind
type ExecutionResponse struct {
	*subscription.Subscription
	// AmountTokens is the token base-unit amount moved by this charge
	AmountTokens decimal.Decimal `json:"amount_tokens"`
}

// BalanceResponse reports a ledger account balance
type BalanceResponse struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

func (r *RegisterPullPaymentRequest) ClientAddress() types.Address {
	client, _ := types.ParseAddress(r.Client)
	return client
}

func (r *RegisterPullPaymentRequest) BeneficiaryAddress() types.Address {
	beneficiary, _ := types.ParseAddress(r.Beneficiary)
	return beneficiary
}

func (r *RegisterPullPaymentRequest) ParsedSignature() types.Signature {
	sig, _ := types.ParseSignature(r.Signature)
	return sig
}

// ToTerms returns the signed registration terms in canonical order
func (r *RegisterPullPaymentRequest) ToTerms() consent.RegistrationTerms {
	return consent.RegistrationTerms{
		Beneficiary:          r.BeneficiaryAddress(),
		Currency:             r.Currency,
		InitialAmountCents:   r.InitialAmountCents,
		RecurringAmountCents: r.RecurringAmountCents,
		FrequencySeconds:     r.FrequencySeconds,
		RemainingPayments:    r.RemainingPayments,
		StartTime:            r.StartTime,
	}
}

// Request validations
func (r *RegisterPullPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateAddress("client", r.Client); err != nil {
		return err
	}
	if err := validateAddress("beneficiary", r.Beneficiary); err != nil {
		return err
	}
	return validateSignature(r.Signature)
}

func (r *ExecutePullPaymentRequest) ClientAddress() types.Address {
	client, _ := types.ParseAddress(r.Client)
	return client
}

func (r *ExecutePullPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateAddress("client", r.Client)
}

func (r *CancelPullPaymentRequest) ClientAddress() types.Address {
	client, _ := types.ParseAddress(r.Client)
	return client
}

func (r *CancelPullPaymentRequest) BeneficiaryAddress() types.Address {
	beneficiary, _ := types.ParseAddress(r.Beneficiary)
	return beneficiary
}

func (r *CancelPullPaymentRequest) ParsedSignature() types.Signature {
	sig, _ := types.ParseSignature(r.Signature)
	return sig
}

func (r *CancelPullPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateAddress("client", r.Client); err != nil {
		return err
	}
	if err := validateAddress("beneficiary", r.Beneficiary); err != nil {
		return err
	}
	return validateSignature(r.Signature)
}

func validateAddress(field, value string) error {
	addr, ok := types.ParseAddress(value)
	if !ok || addr.IsZero() {
		return ierr.NewError("invalid address").
			WithHintf("Field %s must be a non-zero hex address", field).
			WithReportableDetails(map[string]any{field: value}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func validateSignature(value string) error {
	if _, ok := types.ParseSignature(value); !ok {
		return ierr.NewError("malformed signature").
			WithHint("Signature must be 65 hex-encoded bytes (r || s || v)").
			Mark(ierr.ErrValidation)
	}
	return nil
}
