// Command publisher runs the Block Publisher (C4): it backfills every
// missing block height and tails the node's live block-import channel,
// publishing normalized payloads onto the broker's work queue (spec.md
// §4.4).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuel-streams/streams/internal/blocksource"
	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/publisher"
	"github.com/fuel-streams/streams/internal/store"
	appconfig "github.com/fuel-streams/streams/internal/config"
	libconfig "github.com/fuel-streams/streams/pkg/config"
	applog "github.com/fuel-streams/streams/pkg/logger"
)

func main() {
	var cfg appconfig.Config
	if err := libconfig.Load(&cfg); err != nil {
		applog.Init(applog.Config{Level: "ERROR", Format: "JSON"})
		applog.L().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applog.Init(applog.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := applog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(store.Config{
		Driver:       "postgres",
		DSN:          cfg.DatabaseURL,
		MaxIdleConns: cfg.MaxIdleConns,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		log.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	b, err := broker.Connect(ctx, broker.Config{
		URL:              cfg.BrokerURL,
		WorkQueueStream:  "BLOCK_SUBMITTED",
		WorkQueueSubject: "block_submitted.>",
		DedupWindow:      2 * time.Minute,
	})
	if err != nil {
		log.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	c, err := codec.New(cfg.Codec)
	if err != nil {
		log.Error("failed to construct codec", "error", err)
		os.Exit(1)
	}

	source := blocksource.NewFuelNodeSource(blocksource.FuelNodeConfig{
		URL:       cfg.NodeURL,
		Namespace: cfg.Namespace,
	})

	maxInflight := int64(cfg.PublisherMaxThreads)
	pub := publisher.New(source, st, b.WorkQueueProducer(), c, publisher.Config{
		FromHeight:  cfg.FromHeight,
		MaxInflight: maxInflight,
	})

	log.InfoContext(ctx, "publisher starting", "node_url", cfg.NodeURL, "from_height", cfg.FromHeight)
	if err := pub.Run(ctx); err != nil {
		log.ErrorContext(ctx, "publisher exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("publisher shut down cleanly")
}
