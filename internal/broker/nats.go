package broker

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fuel-streams/streams/pkg/resilience"
)

// publishRetry bounds transient retries of one NATS publish call (e.g. a
// connection that's mid-reconnect); durable failures still propagate so
// internal/publisher's own higher-level retry/backfill-rediscovery policy
// (spec.md §4.4 "Failure policy") sees them.
var publishRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 50 * time.Millisecond,
	MaxBackoff:     500 * time.Millisecond,
	Multiplier:     2.0,
	Jitter:         0.2,
}

// NATSBroker is the production Broker implementation: a JetStream
// work-queue stream for the block importer, and core NATS pub/sub for the
// live record stream, both over one connection. Grounded on
// original_source crates/core/src/nats/{client,streams}.rs for the two
// channels' retention/subject shape, and on pkg/messaging.Broker for the
// adapter-pattern surface.
type NATSBroker struct {
	conn *nats.Conn
	js   jetstream.JetStream
	wq   jetstream.Stream
}

// Config configures the NATS connection and work-queue stream.
type Config struct {
	URL             string
	WorkQueueStream string
	WorkQueueSubject string // e.g. "block_submitted.>"
	DedupWindow     time.Duration
}

// Connect dials NATS and ensures the work-queue stream exists with
// work-queue retention (spec.md §4.3 "Retention = work-queue").
func Connect(ctx context.Context, cfg Config) (*NATSBroker, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("fuel-streams"))
	if err != nil {
		return nil, ErrConnectionFailed(err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ErrConnectionFailed(err)
	}

	dedup := cfg.DedupWindow
	if dedup <= 0 {
		dedup = time.Second
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.WorkQueueStream,
		Subjects:   []string{cfg.WorkQueueSubject},
		Retention:  jetstream.WorkQueuePolicy,
		Duplicates: dedup,
	})
	if err != nil {
		conn.Close()
		return nil, ErrConnectionFailed(err)
	}

	return &NATSBroker{conn: conn, js: js, wq: stream}, nil
}

func (b *NATSBroker) Healthy(ctx context.Context) bool {
	return b.conn.Status() == nats.CONNECTED
}

func (b *NATSBroker) Close() error {
	b.conn.Drain()
	return nil
}

func (b *NATSBroker) WorkQueueProducer() WorkQueueProducer {
	return &natsWorkQueueProducer{js: b.js}
}

func (b *NATSBroker) WorkQueueConsumer(durableName string, ackWait time.Duration) (WorkQueueConsumer, error) {
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cons, err := b.wq.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       durableName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, ErrConsumeFailed(err)
	}
	return &natsWorkQueueConsumer{consumer: cons}, nil
}

func (b *NATSBroker) StreamPublisher() StreamPublisher {
	return &natsStreamPublisher{conn: b.conn}
}

func (b *NATSBroker) StreamSubscriber() StreamSubscriber {
	return &natsStreamSubscriber{conn: b.conn}
}

type natsWorkQueueProducer struct {
	js jetstream.JetStream
}

func (p *natsWorkQueueProducer) Publish(ctx context.Context, msg *Message, messageID string) error {
	nmsg := nats.NewMsg(msg.Subject)
	nmsg.Data = msg.Payload
	for k, v := range msg.Headers {
		nmsg.Header.Set(k, v)
	}
	nmsg.Header.Set(nats.MsgIdHdr, messageID)

	err := resilience.Retry(ctx, publishRetry, func(ctx context.Context) error {
		_, err := p.js.PublishMsg(ctx, nmsg)
		return err
	})
	if err != nil {
		return ErrPublishFailed(err)
	}
	return nil
}

func (p *natsWorkQueueProducer) Close() error { return nil }

type natsWorkQueueConsumer struct {
	consumer jetstream.Consumer
}

func (c *natsWorkQueueConsumer) Fetch(ctx context.Context, maxMessages int) ([]*PulledMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	batch, err := c.consumer.Fetch(maxMessages, jetstream.FetchMaxWait(5*time.Second))
	if err != nil {
		return nil, ErrConsumeFailed(err)
	}

	var out []*PulledMessage
	for msg := range batch.Messages() {
		msg := msg
		headers := map[string]string{}
		for k := range msg.Headers() {
			headers[k] = msg.Headers().Get(k)
		}
		out = append(out, &PulledMessage{
			Message: Message{
				Subject:   msg.Subject(),
				Payload:   msg.Data(),
				Headers:   headers,
				Timestamp: time.Now(),
			},
			Ack:  msg.Ack,
			Nack: func() error { return msg.Nak() },
		})
	}
	if err := batch.Error(); err != nil {
		return out, ErrConsumeFailed(err)
	}
	return out, nil
}

func (c *natsWorkQueueConsumer) Close() error { return nil }

type natsStreamPublisher struct {
	conn *nats.Conn
}

func (p *natsStreamPublisher) Publish(ctx context.Context, msg *Message) error {
	err := resilience.Retry(ctx, publishRetry, func(ctx context.Context) error {
		return p.conn.Publish(msg.Subject, msg.Payload)
	})
	if err != nil {
		return ErrPublishFailed(err)
	}
	return nil
}

func (p *natsStreamPublisher) Close() error { return nil }

type natsStreamSubscriber struct {
	conn *nats.Conn
}

func (s *natsStreamSubscriber) Subscribe(ctx context.Context, pattern string) (StreamSubscription, error) {
	msgs := make(chan *nats.Msg, 256)
	sub, err := s.conn.ChanSubscribe(pattern, msgs)
	if err != nil {
		return nil, ErrConsumeFailed(err)
	}
	return &natsStreamSubscription{sub: sub, msgs: msgs}, nil
}

type natsStreamSubscription struct {
	sub  *nats.Subscription
	msgs chan *nats.Msg
}

func (s *natsStreamSubscription) Next(ctx context.Context) (*Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m, ok := <-s.msgs:
		if !ok {
			return nil, ErrClosed(nil)
		}
		return &Message{Subject: m.Subject, Payload: m.Data, Timestamp: time.Now()}, nil
	}
}

func (s *natsStreamSubscription) Close() error {
	return s.sub.Unsubscribe()
}
