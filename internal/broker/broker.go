// Package broker implements the Message Broker Facade (C3): two logically
// distinct channels over one underlying connection — a work queue for the
// block importer (C4 -> C5, consume-once) and a pub/sub record stream
// (C5 -> C6, fan-out, no delivery guarantee beyond the broker's default
// retention).
//
// Interface shapes are grounded on pkg/messaging.{Broker,Producer,Consumer}
// generalized from multi-driver (Kafka/SQS/PubSub) to the two NATS
// JetStream retention modes this spec actually needs.
package broker

import (
	"context"
	"time"
)

// Message is the broker-agnostic envelope exchanged over either channel.
type Message struct {
	Subject   string
	Payload   []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one pulled message. Returning nil acks it; returning an
// error nacks it (JetStream redelivers after ack-wait).
type Handler func(ctx context.Context, msg *Message) error

// WorkQueueProducer publishes to the block-importer work queue (spec.md
// §4.3 "Work queue").
type WorkQueueProducer interface {
	// Publish enqueues msg, deduplicated by messageID within the broker's
	// dedup window. Returns ErrPublishFailed on failure; callers may retry.
	Publish(ctx context.Context, msg *Message, messageID string) error
	Close() error
}

// WorkQueueConsumer pulls from the block-importer work queue with a durable
// name and explicit ack policy.
type WorkQueueConsumer interface {
	// Fetch pulls up to maxMessages, blocking up to the broker's configured
	// wait time. A short slice (possibly empty) is not an error.
	Fetch(ctx context.Context, maxMessages int) ([]*PulledMessage, error)
	Close() error
}

// PulledMessage is a message fetched from the work queue along with its
// ack/nack handles.
type PulledMessage struct {
	Message
	Ack  func() error
	Nack func() error
}

// StreamPublisher publishes one message per entity record onto the
// pub/sub record stream (spec.md §4.3 "Pub/sub").
type StreamPublisher interface {
	// Publish failures are logged and metered by the caller; they never
	// roll back a committed store write (spec.md §4.3).
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// StreamSubscription is a live, server-side filtered subscription over a
// subject pattern (spec.md §4.3 "Pub/sub", §4.6 live tail).
type StreamSubscription interface {
	// Next suspends until a message matching the subscription's pattern
	// arrives or ctx is cancelled.
	Next(ctx context.Context) (*Message, error)
	Close() error
}

// StreamSubscriber opens filtered subscriptions on the record stream.
type StreamSubscriber interface {
	Subscribe(ctx context.Context, pattern string) (StreamSubscription, error)
}

// Broker is the full facade: work-queue pub+sub plus record-stream pub+sub,
// over one underlying connection.
type Broker interface {
	WorkQueueProducer() WorkQueueProducer
	WorkQueueConsumer(durableName string, ackWait time.Duration) (WorkQueueConsumer, error)
	StreamPublisher() StreamPublisher
	StreamSubscriber() StreamSubscriber
	Healthy(ctx context.Context) bool
	Close() error
}
