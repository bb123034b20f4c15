package publisher

import "context"

// Publisher represents a service for publishing offer events
type Publisher interface {
	// Publish appends a message to the stream under the given field
	Publish(ctx context.Context, key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
