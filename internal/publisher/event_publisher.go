package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pullbill/pullbill/internal/config"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/pubsub"
	"github.com/pullbill/pullbill/internal/types"
)

// EventPublisher emits one audit event per successful mutating call.
type EventPublisher interface {
	Publish(ctx context.Context, eventName string, payload any) error
	Close() error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	logger *logger.Logger
}

// NewEventPublisher creates a new publisher over the injected pubsub
func NewEventPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) (EventPublisher, error) {
	return &eventPublisher{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}, nil
}

func (p *eventPublisher) Publish(ctx context.Context, eventName string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName: eventName,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID, body)
	msg.Metadata.Set("event_name", eventName)

	p.logger.Debugw("publishing engine event",
		"event_id", event.ID,
		"event_name", eventName,
		"topic", p.config.Topic,
	)

	return p.pubSub.Publish(ctx, p.config.Topic, msg)
}

func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}
