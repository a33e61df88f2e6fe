package service

import (
	"context"
	"sync"

	"github.com/pullbill/pullbill/internal/api/dto"
	"github.com/pullbill/pullbill/internal/consent"
	"github.com/pullbill/pullbill/internal/domain/subscription"
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
)

// BillingService is the pull-payment billing engine. It owns the
// subscription state machine: executor-gated registration against the
// client's signed consent, due-date execution that charges the client
// through the token ledger, and consent-verified cancellation.
type BillingService interface {
	RegisterPullPayment(ctx context.Context, req dto.RegisterPullPaymentRequest) (*dto.SubscriptionResponse, error)
	ExecutePullPayment(ctx context.Context, req dto.ExecutePullPaymentRequest) (*dto.ExecutionResponse, error)
	CancelPullPayment(ctx context.Context, req dto.CancelPullPaymentRequest) (*dto.SubscriptionResponse, error)
	GetPullPayment(ctx context.Context, client, beneficiary types.Address) (*dto.SubscriptionResponse, error)
	GetBalance(ctx context.Context, account types.Address) (*dto.BalanceResponse, error)
}

type billingService struct {
	ServiceParams

	// mu serializes every state transition so that a failed call can
	// never leave a partially mutated record behind.
	mu sync.Mutex
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

type pullPaymentEventPayload struct {
	Client       string           `json:"client"`
	Beneficiary  string           `json:"beneficiary"`
	PaymentID    string           `json:"payment_id"`
	Currency     string           `json:"currency,omitempty"`
	AmountTokens *decimal.Decimal `json:"amount_tokens,omitempty"`
}

func (s *billingService) RegisterPullPayment(ctx context.Context, req dto.RegisterPullPaymentRequest) (*dto.SubscriptionResponse, error) {
	if err := s.requireExecutor(ctx); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.FrequencySeconds == 0 || req.RemainingPayments == 0 || req.RecurringAmountCents == 0 {
		return nil, ierr.NewError("invalid billing schedule").
			WithHint("Recurring amount, frequency and remaining payments must all be positive").
			WithReportableDetails(map[string]any{
				"recurring_amount_cents": req.RecurringAmountCents,
				"frequency_seconds":      req.FrequencySeconds,
				"remaining_payments":     req.RemainingPayments,
			}).
			Mark(ierr.ErrValidation)
	}

	signer, err := consent.Recover(consent.RegistrationMessage(req.ToTerms()), req.ParsedSignature())
	if err != nil {
		return nil, err
	}
	client := req.ClientAddress()
	if signer != client {
		return nil, ierr.NewError("consent signer does not match client").
			WithHint("The signature was not produced by the client over these terms").
			WithReportableDetails(map[string]any{
				"client": client.String(),
				"signer": signer.String(),
			}).
			Mark(ierr.ErrConsentMismatch)
	}

	sub := &subscription.Subscription{
		Client:               client,
		Beneficiary:          req.BeneficiaryAddress(),
		MerchantID:           req.MerchantID,
		PaymentID:            req.PaymentID,
		Currency:             req.Currency,
		InitialAmountCents:   req.InitialAmountCents,
		RecurringAmountCents: req.RecurringAmountCents,
		FrequencySeconds:     req.FrequencySeconds,
		RemainingPayments:    req.RemainingPayments,
		StartTime:            req.StartTime,
		NextPaymentTime:      req.StartTime,
	}

	s.mu.Lock()
	err = s.SubRepo.Upsert(ctx, sub)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("pull payment registered",
		"client", sub.Client.String(),
		"beneficiary", sub.Beneficiary.String(),
		"payment_id", sub.PaymentID,
		"currency", sub.Currency,
	)

	s.publish(ctx, types.WebhookEventPullPaymentRegistered, pullPaymentEventPayload{
		Client:      sub.Client.String(),
		Beneficiary: sub.Beneficiary.String(),
		PaymentID:   sub.PaymentID,
		Currency:    sub.Currency,
	})

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *billingService) ExecutePullPayment(ctx context.Context, req dto.ExecutePullPaymentRequest) (*dto.ExecutionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client := req.ClientAddress()

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.locateForExecution(ctx, client, req.PaymentID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	var chargeCents uint64
	switch {
	case sub.InitialAmountCents > 0:
		// The signup fee is independent of the recurring schedule and
		// charged at most once.
		chargeCents = sub.InitialAmountCents
	case sub.RemainingPayments == 0:
		return nil, ierr.NewError("no payments remaining").
			WithHint("The subscription has exhausted its payment count").
			Mark(ierr.ErrTiming)
	case now < sub.NextPaymentTime:
		return nil, ierr.NewError("payment not yet due").
			WithHint("The next billing period has not started").
			WithReportableDetails(map[string]any{
				"now":               now,
				"next_payment_time": sub.NextPaymentTime,
			}).
			Mark(ierr.ErrTiming)
	case sub.Cancelled() && sub.NextPaymentTime > sub.CancelTime:
		return nil, ierr.NewError("no further payments due after cancellation").
			WithHint("Only periods that became due before cancellation may still be charged").
			Mark(ierr.ErrTiming)
	default:
		chargeCents = sub.RecurringAmountCents
	}

	amount, err := s.convert(ctx, chargeCents, sub.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.TransferFrom(ctx, sub.Client, sub.Beneficiary, amount); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The token transfer from client to beneficiary failed").
			WithReportableDetails(map[string]any{
				"client":      sub.Client.String(),
				"beneficiary": sub.Beneficiary.String(),
				"amount":      amount.String(),
			}).
			Mark(ierr.ErrTransferFailed)
	}

	// The transfer succeeded; only now mutate the record.
	if sub.InitialAmountCents > 0 {
		sub.InitialAmountCents = 0
		sub.LastPaymentTime = now
	} else {
		sub.LastPaymentTime = now
		sub.NextPaymentTime += sub.FrequencySeconds
		sub.RemainingPayments--
	}
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("pull payment executed",
		"client", sub.Client.String(),
		"beneficiary", sub.Beneficiary.String(),
		"payment_id", sub.PaymentID,
		"amount_tokens", amount.String(),
	)

	s.publish(ctx, types.WebhookEventPullPaymentExecuted, pullPaymentEventPayload{
		Client:       sub.Client.String(),
		Beneficiary:  sub.Beneficiary.String(),
		PaymentID:    sub.PaymentID,
		Currency:     sub.Currency,
		AmountTokens: &amount,
	})

	return &dto.ExecutionResponse{Subscription: sub, AmountTokens: amount}, nil
}

// locateForExecution resolves the subscription a charge targets. The
// caller is normally the beneficiary and addresses its own record
// directly; an allow-listed executor may instead relay a charge by
// payment id when the deployment permits it.
func (s *billingService) locateForExecution(ctx context.Context, client types.Address, paymentID string) (*subscription.Subscription, error) {
	caller := types.GetCaller(ctx)
	if caller.IsZero() {
		return nil, ierr.NewError("no caller identity").
			WithHint("Caller identity is required").
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := s.SubRepo.Get(ctx, client, caller)
	if err == nil && sub.Exists() {
		return sub, nil
	}
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if s.Config.Billing.AllowExecutorExecution {
		ok, eerr := s.ExecutorRepo.IsExecutor(ctx, caller)
		if eerr != nil {
			return nil, eerr
		}
		if ok {
			subs, lerr := s.SubRepo.List(ctx)
			if lerr != nil {
				return nil, lerr
			}
			for _, candidate := range subs {
				if candidate.Client == client && candidate.PaymentID == paymentID && candidate.Exists() {
					return candidate, nil
				}
			}
		}
	}

	return nil, subscription.NewNotFoundError(client, caller)
}

// convert turns a fiat cent amount into integral token base units at
// the currency's registered rate, truncating any remainder.
func (s *billingService) convert(ctx context.Context, cents uint64, currency string) (decimal.Decimal, error) {
	r, err := s.RateRepo.Get(ctx, currency)
	if err != nil {
		if ierr.IsNotFound(err) {
			return decimal.Zero, ierr.NewError("exchange rate not set").
				WithHintf("No exchange rate registered for currency %s", currency).
				Mark(ierr.ErrValidation)
		}
		return decimal.Zero, err
	}

	scaled := decimal.NewFromUint64(cents).Mul(types.ConversionScale)
	q, _ := scaled.QuoRem(r.Rate, 0)
	return q, nil
}

func (s *billingService) CancelPullPayment(ctx context.Context, req dto.CancelPullPaymentRequest) (*dto.SubscriptionResponse, error) {
	if err := s.requireExecutor(ctx); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	client := req.ClientAddress()
	beneficiary := req.BeneficiaryAddress()

	signer, err := consent.Recover(consent.CancellationMessage(req.PaymentID, beneficiary), req.ParsedSignature())
	if err != nil {
		return nil, err
	}
	if signer != client {
		return nil, ierr.NewError("cancellation signer does not match client").
			WithHint("The signature was not produced by the client over this cancellation").
			WithReportableDetails(map[string]any{
				"client": client.String(),
				"signer": signer.String(),
			}).
			Mark(ierr.ErrConsentMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.SubRepo.Get(ctx, client, beneficiary)
	if err != nil {
		return nil, err
	}
	if !sub.Exists() {
		return nil, subscription.NewNotFoundError(client, beneficiary)
	}
	if sub.PaymentID != req.PaymentID {
		return nil, ierr.NewError("payment id does not match registration").
			WithHint("The cancellation names a different payment id than the stored subscription").
			WithReportableDetails(map[string]any{
				"payment_id": req.PaymentID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if sub.Cancelled() {
		return nil, ierr.NewError("subscription already cancelled").
			WithHint("Cancellation is permanent and may only happen once").
			Mark(ierr.ErrAlreadyExists)
	}

	sub.CancelTime = s.now()
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("pull payment cancelled",
		"client", sub.Client.String(),
		"beneficiary", sub.Beneficiary.String(),
		"payment_id", sub.PaymentID,
	)

	s.publish(ctx, types.WebhookEventPullPaymentCancelled, pullPaymentEventPayload{
		Client:      sub.Client.String(),
		Beneficiary: sub.Beneficiary.String(),
		PaymentID:   sub.PaymentID,
	})

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *billingService) GetPullPayment(ctx context.Context, client, beneficiary types.Address) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, client, beneficiary)
	if err != nil {
		return nil, err
	}
	if !sub.Exists() {
		return nil, subscription.NewNotFoundError(client, beneficiary)
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *billingService) GetBalance(ctx context.Context, account types.Address) (*dto.BalanceResponse, error) {
	balance, err := s.Ledger.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		Account: account.String(),
		Balance: balance,
	}, nil
}
