// Package publisher implements the Block Publisher (C4): on startup it
// discovers missing block-height ranges and backfills them bounded by a
// semaphore, while a second task tails the node's live block-import
// channel; both publish normalized MsgPayloads onto the broker's work
// queue (spec.md §4.4).
package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fuel-streams/streams/internal/blocksource"
	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/pkg/concurrency"
	applog "github.com/fuel-streams/streams/pkg/logger"
)

// Config tunes the publisher's concurrency and retry behavior.
type Config struct {
	// FromHeight floors historical backfill (spec.md §6.6 FROM_HEIGHT).
	FromHeight uint64
	// MaxInflight caps concurrent in-flight block fetch+publish
	// operations during backfill (spec.md §4.4 "recommended 32 inflight").
	MaxInflight int64
	// PublishRetries bounds per-block publish retries (spec.md §4.3
	// "C4 retries are bounded").
	PublishRetries int
	// DrainTimeout bounds graceful shutdown (spec.md §5 "default 20s").
	DrainTimeout time.Duration
}

func (c Config) normalize() Config {
	if c.MaxInflight <= 0 {
		c.MaxInflight = 32
	}
	if c.PublishRetries <= 0 {
		c.PublishRetries = 3
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 20 * time.Second
	}
	return c
}

// Publisher runs the historical-backfill and live-tail tasks.
type Publisher struct {
	source blocksource.Source
	store  store.Store
	wqProd broker.WorkQueueProducer
	codec  codec.Codec
	cfg    Config
	sem    *concurrency.Semaphore
}

func New(source blocksource.Source, st store.Store, wqProd broker.WorkQueueProducer, c codec.Codec, cfg Config) *Publisher {
	cfg = cfg.normalize()
	return &Publisher{
		source: source, store: st, wqProd: wqProd, codec: c, cfg: cfg,
		sem: concurrency.NewSemaphore(cfg.MaxInflight),
	}
}

// Run implements spec.md §4.4's startup sequence: wait for sync, discover
// gaps, then run backfill and live-tail concurrently until ctx is
// cancelled. Both tasks are drained with cfg.DrainTimeout on shutdown.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.source.WaitSynced(ctx); err != nil {
		return err
	}

	tip, err := p.source.LatestHeight(ctx)
	if err != nil {
		return err
	}

	gaps, err := p.store.FindNextBlockToSave(ctx, tip)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p.backfill(ctx, gaps)
	}()
	go func() {
		defer wg.Done()
		p.liveTail(ctx)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	select {
	case <-done:
		return nil
	case <-time.After(p.cfg.DrainTimeout):
		applog.L().Warn("publisher drain timeout exceeded, returning early")
		return nil
	}
}

// backfill iterates every gap bounded by [FromHeight, tip], fetching and
// publishing each height with bounded concurrency (spec.md §4.4
// "Concurrency").
func (p *Publisher) backfill(ctx context.Context, gaps []store.BlockHeightGap) {
	var wg sync.WaitGroup
	for _, gap := range gaps {
		start := gap.Start
		if start < p.cfg.FromHeight {
			start = p.cfg.FromHeight
		}
		for h := start; h <= gap.End; h++ {
			if ctx.Err() != nil {
				wg.Wait()
				return
			}
			if err := p.sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return
			}
			wg.Add(1)
			height := h
			go func() {
				defer wg.Done()
				defer p.sem.Release(1)
				if err := p.publishHeight(ctx, height); err != nil {
					applog.L().ErrorContext(ctx, "backfill publish failed, will be rediscovered as a gap",
						"height", height, "error", err)
				}
			}()
		}
	}
	wg.Wait()
}

// liveTail subscribes to the node's live block-import channel and
// publishes each incoming block; a publish failure is logged and does not
// interrupt subsequent blocks (spec.md §4.4 "Failure policy").
func (p *Publisher) liveTail(ctx context.Context) {
	blocks, err := p.source.Subscribe(ctx)
	if err != nil {
		applog.L().ErrorContext(ctx, "failed to subscribe to live block feed", "error", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case sealed, ok := <-blocks:
			if !ok {
				return
			}
			if err := p.publishHeight(ctx, sealed.Height); err != nil {
				applog.L().ErrorContext(ctx, "live-tail publish failed", "height", sealed.Height, "error", err)
			}
		}
	}
}

// publishHeight implements spec.md §4.4's per-block publish procedure.
func (p *Publisher) publishHeight(ctx context.Context, height uint64) error {
	payload, err := p.source.FetchBlock(ctx, height)
	if err != nil {
		return err
	}

	value, err := p.codec.Encode(payload)
	if err != nil {
		return err
	}

	msg := &broker.Message{
		Subject: fmt.Sprintf("block_submitted.%s.%d", payload.Block.Producer, height),
		Payload: value,
	}
	messageID := fmt.Sprintf("block_%d", height)

	var lastErr error
	for attempt := 0; attempt < p.cfg.PublishRetries; attempt++ {
		if lastErr = p.wqProd.Publish(ctx, msg, messageID); lastErr == nil {
			return nil
		}
		applog.L().WarnContext(ctx, "publish attempt failed", "height", height, "attempt", attempt, "error", lastErr)
	}
	return lastErr
}
