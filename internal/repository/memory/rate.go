package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pullbill/pullbill/internal/domain/rate"
	ierr "github.com/pullbill/pullbill/internal/errors"
)

// RateStore is the in-memory exchange-rate registry.
type RateStore struct {
	mu    sync.RWMutex
	rates map[string]rate.ExchangeRate
}

func NewRateStore() *RateStore {
	return &RateStore{
		rates: make(map[string]rate.ExchangeRate),
	}
}

func (s *RateStore) Set(ctx context.Context, r *rate.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rates[r.Currency] = *r
	return nil
}

func (s *RateStore) Get(ctx context.Context, currency string) (*rate.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.rates[currency]
	if !ok {
		return nil, ierr.NewError("exchange rate not set").
			WithHintf("No exchange rate registered for currency %s", currency).
			WithReportableDetails(map[string]any{"currency": currency}).
			Mark(ierr.ErrNotFound)
	}
	out := stored
	return &out, nil
}

func (s *RateStore) List(ctx context.Context) ([]*rate.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*rate.ExchangeRate, 0, len(s.rates))
	for _, stored := range s.rates {
		r := stored
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// Clear empties the store. Test helper.
func (s *RateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = make(map[string]rate.ExchangeRate)
}
