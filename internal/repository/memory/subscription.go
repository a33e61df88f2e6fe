package memory

import (
	"context"
	"sync"

	"github.com/pullbill/pullbill/internal/domain/subscription"
	"github.com/pullbill/pullbill/internal/types"
)

type pairKey struct {
	client      types.Address
	beneficiary types.Address
}

// SubscriptionStore is the single-writer subscription store. All access
// is serialized through one lock, matching the sequentially-consistent
// state machine the engine is modeled as.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[pairKey]subscription.Subscription
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs: make(map[pairKey]subscription.Subscription),
	}
}

func (s *SubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[pairKey{sub.Client, sub.Beneficiary}] = *sub
	return nil
}

// Get returns a copy of the stored record. Callers mutate the copy and
// persist through Update, so a failed operation never leaks partial state.
func (s *SubscriptionStore) Get(ctx context.Context, client, beneficiary types.Address) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.subs[pairKey{client, beneficiary}]
	if !ok {
		return nil, subscription.NewNotFoundError(client, beneficiary)
	}
	out := stored
	return &out, nil
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{sub.Client, sub.Beneficiary}
	if _, ok := s.subs[key]; !ok {
		return subscription.NewNotFoundError(sub.Client, sub.Beneficiary)
	}
	s.subs[key] = *sub
	return nil
}

func (s *SubscriptionStore) List(ctx context.Context) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*subscription.Subscription, 0, len(s.subs))
	for _, stored := range s.subs {
		sub := stored
		out = append(out, &sub)
	}
	return out, nil
}

// Clear empties the store. Test helper.
func (s *SubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[pairKey]subscription.Subscription)
}
