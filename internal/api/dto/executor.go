package dto

import (
	ierr "github.com/pullbill/pullbill/internal/errors"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/pullbill/pullbill/internal/validator"
)

// ExecutorRequest represents the request payload for adding or removing
// an executor
type ExecutorRequest struct {
	Account string `json:"account" binding:"required" validate:"required" example:"0xf52dba6fe86d2f80c13f2e2565f521ad0c18efc0"`
}

// ExecutorResponse represents a single allow-listed executor
type ExecutorResponse struct {
	Account string `json:"account"`
}

// ListExecutorsResponse represents the current executor allow-list
type ListExecutorsResponse struct {
	Items []*ExecutorResponse `json:"items"`
	Total int                 `json:"total"`
}

// AccountAddress returns the parsed executor account
func (r *ExecutorRequest) AccountAddress() types.Address {
	account, _ := types.ParseAddress(r.Account)
	return account
}

// Request validations
func (r *ExecutorRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	account, ok := types.ParseAddress(r.Account)
	if !ok || account.IsZero() {
		return ierr.NewError("invalid executor account").
			WithHint("Executor account must be a non-zero address").
			WithReportableDetails(map[string]any{"account": r.Account}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
