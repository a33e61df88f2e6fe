package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pullbill/pullbill/internal/types"
)

func RequestIDMiddleware(c *gin.Context) {
	// Create a new context from the request context
	ctx := c.Request.Context()

	// Add request ID
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	// Create new context with values
	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)

	// Replace request context
	c.Request = c.Request.WithContext(ctx)

	// Add headers for response
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// CallerMiddleware reads the caller account from the X-Caller-Address
// header and attaches it to the request context. Capability checks in
// the service layer run against this identity.
func CallerMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.GetHeader(types.HeaderCaller)
	if raw != "" {
		if caller, ok := types.ParseAddress(raw); ok {
			ctx = types.SetCaller(ctx, caller)
		}
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
