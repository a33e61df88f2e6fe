package service

import (
	"context"

	"github.com/pullbill/pullbill/internal/api/dto"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
)

// RateService manages the per-currency exchange rates the billing
// engine converts fiat amounts with.
type RateService interface {
	SetRate(ctx context.Context, req dto.SetRateRequest) (*dto.RateResponse, error)
	GetRate(ctx context.Context, currency string) (*dto.RateResponse, error)
	ListRates(ctx context.Context) (*dto.ListRatesResponse, error)
}

type rateService struct {
	ServiceParams
}

func NewRateService(params ServiceParams) RateService {
	return &rateService{
		ServiceParams: params,
	}
}

type rateUpdatedPayload struct {
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

func (s *rateService) SetRate(ctx context.Context, req dto.SetRateRequest) (*dto.RateResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := req.ToExchangeRate(types.GetCaller(ctx), s.Clock.Now().UTC())
	if err := s.RateRepo.Set(ctx, r); err != nil {
		return nil, err
	}

	s.Logger.Infow("exchange rate updated",
		"currency", r.Currency,
		"rate", r.Rate.String(),
	)

	s.publish(ctx, types.WebhookEventRateUpdated, rateUpdatedPayload{
		Currency: r.Currency,
		Rate:     r.Rate,
	})

	return dto.ToRateResponse(r), nil
}

func (s *rateService) GetRate(ctx context.Context, currency string) (*dto.RateResponse, error) {
	r, err := s.RateRepo.Get(ctx, currency)
	if err != nil {
		return nil, err
	}
	return dto.ToRateResponse(r), nil
}

func (s *rateService) ListRates(ctx context.Context) (*dto.ListRatesResponse, error) {
	rates, err := s.RateRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListRatesResponse{
		Items: make([]*dto.RateResponse, 0, len(rates)),
	}
	for _, r := range rates {
		resp.Items = append(resp.Items, dto.ToRateResponse(r))
	}
	resp.Total = len(resp.Items)
	return resp, nil
}
