// Package consumer implements the Stream Consumer (C5): it pulls decoded
// block payloads off the work queue, fans each out into per-entity record
// packets, commits them in one store transaction, republishes them onto
// the live record stream, and acks — the
// Received -> Decoded -> Inserting -> Committed -> Publishing -> Acked
// state machine of spec.md §4.5.
package consumer

import (
	"context"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/domain"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subject"
	"github.com/fuel-streams/streams/pkg/concurrency"
	applog "github.com/fuel-streams/streams/pkg/logger"
)

// Config tunes the worker loop's batch size and concurrency.
type Config struct {
	// BatchSize is how many messages Fetch pulls per iteration (spec.md
	// §4.5 "pull(100)").
	BatchSize int
	// MaxInflight bounds concurrent in-flight message processing (spec.md
	// §4.5 "permit <= 32").
	MaxInflight int64
	// FetchWait is how long the loop waits after a Fetch returns no
	// messages, before it checks ctx and fetches again.
	FetchWait time.Duration
}

func (c Config) normalize() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxInflight <= 0 {
		c.MaxInflight = 32
	}
	if c.FetchWait <= 0 {
		c.FetchWait = 5 * time.Second
	}
	return c
}

// Consumer runs the worker loop.
type Consumer struct {
	wq        broker.WorkQueueConsumer
	publisher broker.StreamPublisher
	store     store.Store
	codec     codec.Codec
	cfg       Config
	sem       *concurrency.Semaphore
}

func New(wq broker.WorkQueueConsumer, publisher broker.StreamPublisher, st store.Store, c codec.Codec, cfg Config) *Consumer {
	cfg = cfg.normalize()
	return &Consumer{
		wq: wq, publisher: publisher, store: st, codec: c, cfg: cfg,
		sem: concurrency.NewSemaphore(cfg.MaxInflight),
	}
}

// Run pulls batches until ctx is cancelled, processing each message of a
// batch concurrently bounded by cfg.MaxInflight.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := c.wq.Fetch(ctx, c.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			applog.L().ErrorContext(ctx, "work queue fetch failed", "error", err)
			continue
		}

		if len(batch) == 0 {
			// Non-JetStream Fetch implementations (the in-memory test
			// double) never block, so poll at FetchWait instead of
			// spinning.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.FetchWait):
			}
			continue
		}

		c.processBatch(ctx, batch)
	}
}

func (c *Consumer) processBatch(ctx context.Context, batch []*broker.PulledMessage) {
	done := make(chan struct{}, len(batch))
	for _, msg := range batch {
		msg := msg
		if err := c.sem.Acquire(ctx, 1); err != nil {
			done <- struct{}{}
			continue
		}
		go func() {
			defer c.sem.Release(1)
			defer func() { done <- struct{}{} }()
			c.processOne(ctx, msg)
		}()
	}
	for range batch {
		<-done
	}
}

// processOne implements spec.md §4.5's per-message state machine. Decode,
// packet-build and insert errors are logged and the message is nacked so
// the broker can redeliver -- the store upsert on subject makes a retried
// block idempotent. Live-stream publish failures after the commit are only
// logged, and the message is still acked.
func (c *Consumer) processOne(ctx context.Context, msg *broker.PulledMessage) {
	var payload domain.MsgPayload
	if err := c.codec.Decode(msg.Payload, &payload); err != nil {
		applog.L().ErrorContext(ctx, "decode failed, nacking for retry", "subject", msg.Subject, "error", err)
		if nerr := msg.Nack(); nerr != nil {
			applog.L().ErrorContext(ctx, "nack failed", "error", nerr)
		}
		return
	}

	packets, err := domain.BuildAllPackets(payload, c.codec)
	if err != nil {
		applog.L().ErrorContext(ctx, "packet build failed, nacking for retry", "error", err)
		if nerr := msg.Nack(); nerr != nil {
			applog.L().ErrorContext(ctx, "nack failed", "error", nerr)
		}
		return
	}

	records := make([]store.Record, 0, len(packets))
	for _, p := range packets {
		subj, err := subject.New(p.SubjectID, p.SubjectParams)
		if err != nil {
			applog.L().ErrorContext(ctx, "failed to rebuild subject for packet", "subject_id", p.SubjectID, "error", err)
			if nerr := msg.Nack(); nerr != nil {
				applog.L().ErrorContext(ctx, "nack failed", "error", nerr)
			}
			return
		}
		records = append(records, store.Record{
			Entity:  p.Entity,
			Subject: subj.WithNamespace(p.Namespace),
			Value:   p.Value,
			Columns: p.Columns,
		})
	}

	if err := c.store.InsertBatch(ctx, records); err != nil {
		applog.L().ErrorContext(ctx, "insert batch failed, nacking for retry", "block_height", payload.Block.Height, "error", err)
		if nerr := msg.Nack(); nerr != nil {
			applog.L().ErrorContext(ctx, "nack failed", "error", nerr)
		}
		return
	}

	for _, p := range packets {
		streamMsg := &broker.Message{Subject: p.SubjectStr, Payload: p.Value}
		if err := c.publisher.Publish(ctx, streamMsg); err != nil {
			applog.L().ErrorContext(ctx, "live-stream publish failed, block already committed",
				"subject", p.SubjectStr, "error", err)
		}
	}

	if err := msg.Ack(); err != nil {
		applog.L().ErrorContext(ctx, "ack failed", "block_height", payload.Block.Height, "error", err)
	}
}
