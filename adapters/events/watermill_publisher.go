package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/codeventure/warden/ports"
)

// UserRegisteredTopic is consumed by the mail worker.
const UserRegisteredTopic = "warden.user.registered"

// UserRegisteredEvent is the payload published on registration.
type UserRegisteredEvent struct {
	Email string `json:"email"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishUserRegistered publishes a user-registered event.
func (p *WatermillPublisher) PublishUserRegistered(ctx context.Context, email string) error {
	payload, err := json.Marshal(UserRegisteredEvent{Email: email})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(UserRegisteredTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
