package webhook

import (
	"context"
	"encoding/json"

	"github.com/pullbill/pullbill/internal/config"
	"github.com/pullbill/pullbill/internal/logger"
	"github.com/pullbill/pullbill/internal/pubsub"
	"github.com/pullbill/pullbill/internal/types"
)

// WebhookService drains the engine event topic and hands each event to
// downstream delivery. The current delivery is an audit log line; the
// subscription itself decouples delivery from the request path.
type WebhookService struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	logger *logger.Logger

	cancel context.CancelFunc
}

func NewWebhookService(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) *WebhookService {
	return &WebhookService{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}
}

// Start begins consuming engine events until Stop is called.
func (s *WebhookService) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	messages, err := s.pubSub.Subscribe(ctx, s.config.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var event types.WebhookEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				s.logger.Errorw("failed to decode engine event",
					"message_id", msg.UUID,
					"error", err,
				)
				msg.Ack()
				continue
			}

			s.logger.Infow("engine event",
				"event_id", event.ID,
				"event_name", event.EventName,
				"payload", string(event.Payload),
			)
			msg.Ack()
		}
	}()

	return nil
}

// Stop terminates the subscription.
func (s *WebhookService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
