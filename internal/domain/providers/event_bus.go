package providers

import (
	"context"

	"github.com/carefinder/backend/internal/domain/entities"
)

// EventBus publishes search lifecycle events to interested consumers.
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.SearchEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}
