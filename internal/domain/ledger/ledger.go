package ledger

import (
	"context"

	"github.com/pullbill/pullbill/internal/types"
	"github.com/shopspring/decimal"
)

// TokenLedger is the external fungible-token collaborator. The billing
// engine only ever initiates pull-based transfers from client to
// beneficiary; it never holds a balance itself. Amounts are integral
// decimals in 10^TokenDecimals base units.
type TokenLedger interface {
	// TransferFrom moves amount from owner to recipient using the
	// allowance owner previously granted to the engine. Insufficient
	// balance or allowance fails the transfer.
	TransferFrom(ctx context.Context, owner, recipient types.Address, amount decimal.Decimal) error

	// BalanceOf returns the current balance of an account.
	BalanceOf(ctx context.Context, account types.Address) (decimal.Decimal, error)
}
