package subscription

import (
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
)

// NewNotFoundError creates a not found error carrying the pair context
func NewNotFoundError(client, beneficiary types.Address) error {
	return ierr.NewError("pull payment not found").
		WithHint("No subscription registered for this client and beneficiary").
		WithReportableDetails(map[string]any{
			"client":      client.String(),
			"beneficiary": beneficiary.String(),
		}).
		Mark(ierr.ErrNotFound)
}
