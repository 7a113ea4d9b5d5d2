package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/stretchr/testify/require"
)

// These tests exercise MemoryBroker directly. NATSBroker is grounded on the
// same interfaces but requires a live NATS server, so it is covered by
// integration tests rather than this unit suite (conformance to the
// Broker contract is what's asserted here, not wire compatibility).

func TestWorkQueueDeliversOnceAndDrains(t *testing.T) {
	ctx := context.Background()
	b := broker.NewMemoryBroker()

	producer := b.WorkQueueProducer()
	require.NoError(t, producer.Publish(ctx, &broker.Message{
		Subject: "block_submitted.0xp.10", Payload: []byte("block-10"),
	}, "block_10"))

	consumer, err := b.WorkQueueConsumer("publisher", time.Second)
	require.NoError(t, err)

	msgs, err := consumer.Fetch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, []byte("block-10"), msgs[0].Payload)
	require.NoError(t, msgs[0].Ack())

	again, err := consumer.Fetch(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestStreamSubscriberOnlyReceivesMatchingSubjects(t *testing.T) {
	ctx := context.Background()
	b := broker.NewMemoryBroker()

	sub, err := b.StreamSubscriber().Subscribe(ctx, "blocks.>")
	require.NoError(t, err)
	defer sub.Close()

	publisher := b.StreamPublisher()
	require.NoError(t, publisher.Publish(ctx, &broker.Message{Subject: "transactions.10.0", Payload: []byte("tx")}))
	require.NoError(t, publisher.Publish(ctx, &broker.Message{Subject: "blocks.10.0xp", Payload: []byte("block")}))

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err := sub.Next(recvCtx)
	require.NoError(t, err)
	require.Equal(t, "blocks.10.0xp", msg.Subject)
}

func TestStreamSubscriberWildcardMatchesSingleToken(t *testing.T) {
	ctx := context.Background()
	b := broker.NewMemoryBroker()

	sub, err := b.StreamSubscriber().Subscribe(ctx, "blocks.*.0xp")
	require.NoError(t, err)
	defer sub.Close()

	publisher := b.StreamPublisher()
	require.NoError(t, publisher.Publish(ctx, &broker.Message{Subject: "blocks.10.20.0xp", Payload: []byte("too-long")}))
	require.NoError(t, publisher.Publish(ctx, &broker.Message{Subject: "blocks.10.0xp", Payload: []byte("right")}))

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err := sub.Next(recvCtx)
	require.NoError(t, err)
	require.Equal(t, []byte("right"), msg.Payload)
}

func TestWorkQueueFetchCapsAtMaxMessages(t *testing.T) {
	ctx := context.Background()
	b := broker.NewMemoryBroker()
	producer := b.WorkQueueProducer()

	for i := 0; i < 5; i++ {
		require.NoError(t, producer.Publish(ctx, &broker.Message{Subject: "block_submitted.0xp.1", Payload: []byte{byte(i)}}, "x"))
	}

	consumer, err := b.WorkQueueConsumer("publisher", time.Second)
	require.NoError(t, err)

	msgs, err := consumer.Fetch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}
