package memory

import (
	"context"
	"sync"

	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
)

// LedgerStore is an in-memory fungible-token ledger with the pull
// semantics the billing engine depends on: owners grant the engine an
// allowance, and the engine spends it by charging transfers.
type LedgerStore struct {
	mu         sync.RWMutex
	balances   map[types.Address]decimal.Decimal
	allowances map[types.Address]decimal.Decimal
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		balances:   make(map[types.Address]decimal.Decimal),
		allowances: make(map[types.Address]decimal.Decimal),
	}
}

// Mint credits an account. Local-mode and test seeding.
func (s *LedgerStore) Mint(account types.Address, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = s.balance(account).Add(amount)
}

// Approve sets the allowance the owner grants the engine.
func (s *LedgerStore) Approve(owner types.Address, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowances[owner] = amount
}

func (s *LedgerStore) TransferFrom(ctx context.Context, owner, recipient types.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ierr.NewError("negative transfer amount").
			Mark(ierr.ErrTransferFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allowance := s.allowance(owner)
	if allowance.LessThan(amount) {
		return ierr.NewError("insufficient allowance").
			WithHintf("Owner %s has not approved enough tokens", owner).
			Mark(ierr.ErrTransferFailed)
	}
	balance := s.balance(owner)
	if balance.LessThan(amount) {
		return ierr.NewError("insufficient balance").
			WithHintf("Owner %s does not hold enough tokens", owner).
			Mark(ierr.ErrTransferFailed)
	}

	s.allowances[owner] = allowance.Sub(amount)
	s.balances[owner] = balance.Sub(amount)
	s.balances[recipient] = s.balance(recipient).Add(amount)
	return nil
}

func (s *LedgerStore) BalanceOf(ctx context.Context, account types.Address) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance(account), nil
}

// Allowance returns the remaining engine allowance for the owner.
func (s *LedgerStore) Allowance(owner types.Address) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowance(owner)
}

func (s *LedgerStore) balance(account types.Address) decimal.Decimal {
	if b, ok := s.balances[account]; ok {
		return b
	}
	return decimal.Zero
}

func (s *LedgerStore) allowance(owner types.Address) decimal.Decimal {
	if a, ok := s.allowances[owner]; ok {
		return a
	}
	return decimal.Zero
}

// Clear empties the ledger. Test helper.
func (s *LedgerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = make(map[types.Address]decimal.Decimal)
	s.allowances = make(map[types.Address]decimal.Decimal)
}
