package executor

import (
	"context"

	"github.com/pullbill/pullbill/internal/types"
)

// Repository is the executor allow-list backing the access gate.
type Repository interface {
	// Add registers an executor; AlreadyExists if the account is
	// already a member.
	Add(ctx context.Context, account types.Address) error

	// Remove drops an executor; removing a non-member is a no-op.
	Remove(ctx context.Context, account types.Address) error

	// IsExecutor reports current membership.
	IsExecutor(ctx context.Context, account types.Address) (bool, error)

	// List returns the current members.
	List(ctx context.Context) ([]types.Address, error)
}
