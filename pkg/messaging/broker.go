package messaging

import (
	"context"
)

// Broker fans messages out to every subscriber of a channel.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
