package memory

import (
	"context"
	"sync"

	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
)

// ExecutorStore is the in-memory executor allow-list.
type ExecutorStore struct {
	mu      sync.RWMutex
	members map[types.Address]struct{}
}

func NewExecutorStore() *ExecutorStore {
	return &ExecutorStore{
		members: make(map[types.Address]struct{}),
	}
}

func (s *ExecutorStore) Add(ctx context.Context, account types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[account]; ok {
		return ierr.NewError("executor already registered").
			WithHintf("Account %s is already an executor", account).
			Mark(ierr.ErrAlreadyExists)
	}
	s.members[account] = struct{}{}
	return nil
}

// Remove drops the account; removing a non-member is a no-op.
func (s *ExecutorStore) Remove(ctx context.Context, account types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, account)
	return nil
}

func (s *ExecutorStore) IsExecutor(ctx context.Context, account types.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[account]
	return ok, nil
}

func (s *ExecutorStore) List(ctx context.Context) ([]types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Address, 0, len(s.members))
	for account := range s.members {
		out = append(out, account)
	}
	return out, nil
}

// Clear empties the store. Test helper.
func (s *ExecutorStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[types.Address]struct{})
}
