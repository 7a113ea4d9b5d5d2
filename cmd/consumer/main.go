// Command consumer runs the Stream Consumer (C5): it pulls decoded block
// payloads off the work queue, commits their per-entity records to the
// store, and republishes them onto the live record stream (spec.md
// §4.5).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/consumer"
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

	wq, err := b.WorkQueueConsumer("stream-consumer", 30*time.Second)
	if err != nil {
		log.Error("failed to create work queue consumer", "error", err)
		os.Exit(1)
	}

	c, err := codec.New(cfg.Codec)
	if err != nil {
		log.Error("failed to construct codec", "error", err)
		os.Exit(1)
	}

	con := consumer.New(wq, b.StreamPublisher(), st, c, consumer.Config{})

	log.InfoContext(ctx, "consumer starting")
	if err := con.Run(ctx); err != nil {
		log.ErrorContext(ctx, "consumer exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("consumer shut down cleanly")
}
