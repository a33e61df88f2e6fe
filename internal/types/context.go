package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	// CtxCaller carries the authenticated account submitting the operation.
	// Every capability check (administrator, executor, beneficiary) reads it.
	CtxCaller ContextKey = "ctx_caller"
)

// HeaderRequestID is the response header echoing the request ID.
const HeaderRequestID = "X-Request-ID"

// HeaderCaller is the trusted-gateway header carrying the caller address.
const HeaderCaller = "X-Caller-Address"

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetCaller returns the caller account from the context, or the zero
// address when no caller identity was established.
func GetCaller(ctx context.Context) Address {
	if caller, ok := ctx.Value(CtxCaller).(Address); ok {
		return caller
	}
	return ZeroAddress
}

// SetCaller sets the caller account in the context
func SetCaller(ctx context.Context, caller Address) context.Context {
	return context.WithValue(ctx, CtxCaller, caller)
}

// ValidateCallerContext validates that a caller identity is present
func ValidateCallerContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}
	if GetCaller(ctx).IsZero() {
		return fmt.Errorf("no caller identity found in context")
	}
	return nil
}
