package rate

import (
	"context"
)

// Repository is the currency to exchange-rate registry. Writes are
// unconditional overwrites; reads of an unset currency fail NotFound so
// callers cannot mistake "absent" for a zero-cost rate.
type Repository interface {
	Set(ctx context.Context, r *ExchangeRate) error
	Get(ctx context.Context, currency string) (*ExchangeRate, error)
	List(ctx context.Context) ([]*ExchangeRate, error)
}
