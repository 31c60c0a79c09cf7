package ports

import "context"

// EventPublisher hands events to the background worker pipeline.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, email string) error
}
