package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent is the envelope published for every successful mutating call.
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Common webhook event names
const (
	WebhookEventRateUpdated           = "rate.updated"
	WebhookEventPullPaymentRegistered = "pullpayment.registered"
	WebhookEventPullPaymentExecuted   = "pullpayment.executed"
	WebhookEventPullPaymentCancelled  = "pullpayment.cancelled"
)
