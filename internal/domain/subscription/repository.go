package subscription

import (
	"context"

	"github.com/pullbill/pullbill/internal/types"
)

// Repository is the subscription store, keyed by (client, beneficiary).
type Repository interface {
	// Upsert writes a subscription, replacing any existing record for
	// the pair.
	Upsert(ctx context.Context, sub *Subscription) error

	// Get retrieves the subscription for the pair; NotFound if absent.
	Get(ctx context.Context, client, beneficiary types.Address) (*Subscription, error)

	// Update persists mutations to an existing record; NotFound if absent.
	Update(ctx context.Context, sub *Subscription) error

	// List returns all stored subscriptions.
	List(ctx context.Context) ([]*Subscription, error)
}
