package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// CollectionChannel names the pub/sub channel for a collection's change
// events, e.g. "collection:appointments".
func CollectionChannel(collection string) string {
	return "collection:" + collection
}
