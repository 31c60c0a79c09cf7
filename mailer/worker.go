package mailer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/codeventure/warden/adapters/events"
)

// NewWorker builds a message router consuming registration events and sending
// welcome emails. Delivery is at-least-once with bounded retry; a message that
// still fails after the retries is dropped and never reaches the registration
// path.
func NewWorker(subscriber message.Subscriber, sender Sender, wmLogger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("message router: %w", err)
	}

	router.AddMiddleware(
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	router.AddNoPublisherHandler(
		"welcome_email",
		events.UserRegisteredTopic,
		subscriber,
		func(msg *message.Message) error {
			var evt events.UserRegisteredEvent
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				// Malformed payloads will never parse; drop instead of retrying.
				wmLogger.Error("malformed registration event", err, watermill.LogFields{"uuid": msg.UUID})
				return nil
			}

			return sender.SendWelcome(msg.Context(), evt.Email)
		},
	)

	return router, nil
}
