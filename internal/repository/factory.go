package repository

import (
	"github.com/pullbill/pullbill/internal/domain/executor"
	"github.com/pullbill/pullbill/internal/domain/ledger"
	"github.com/pullbill/pullbill/internal/domain/rate"
	"github.com/pullbill/pullbill/internal/domain/subscription"
	"github.com/pullbill/pullbill/internal/repository/memory"
)

// The engine is a sequentially-consistent state machine over a small
// store, so the deployed repositories are the mutex-serialized in-memory
// ones; construct once at engine start and inject.

func NewSubscriptionRepository() subscription.Repository {
	return memory.NewSubscriptionStore()
}

func NewRateRepository() rate.Repository {
	return memory.NewRateStore()
}

func NewExecutorRepository() executor.Repository {
	return memory.NewExecutorStore()
}

func NewTokenLedger() ledger.TokenLedger {
	return memory.NewLedgerStore()
}
