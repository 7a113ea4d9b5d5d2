// Command api runs the Subscription Engine (C6): the REST + WebSocket
// surface that authenticates API keys and streams historical-then-live
// records to clients (spec.md §4.6).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	appconfig "github.com/fuel-streams/streams/internal/config"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subscription"
	libcache "github.com/fuel-streams/streams/pkg/cache"
	memorycache "github.com/fuel-streams/streams/pkg/cache/adapters/memory"
	rediscache "github.com/fuel-streams/streams/pkg/cache/adapters/redis"
	libconfig "github.com/fuel-streams/streams/pkg/config"
	applog "github.com/fuel-streams/streams/pkg/logger"
)

func newCache(cfg appconfig.Config) (libcache.Cache, error) {
	if cfg.CacheDriver == "redis" {
		return rediscache.New(libcache.Config{
			Driver:   cfg.CacheDriver,
			Host:     cfg.CacheHost,
			Port:     cfg.CachePort,
			Password: cfg.CachePassword,
			DB:       cfg.CacheDB,
		})
	}
	return memorycache.New(), nil
}

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

	keyCache, err := newCache(cfg)
	if err != nil {
		log.Error("failed to construct api-key cache", "error", err)
		os.Exit(1)
	}
	defer keyCache.Close()

	rlCache, err := newCache(cfg)
	if err != nil {
		log.Error("failed to construct rate-limit cache", "error", err)
		os.Exit(1)
	}
	defer rlCache.Close()

	var loader subscription.Loader
	if cfg.AdminAPIKey != "" {
		loader = subscription.NewAdminLoader(cfg.AdminAPIKey)
	}
	var jwtKey []byte
	if cfg.JWTSigningKey != "" {
		jwtKey = []byte(cfg.JWTSigningKey)
	}
	manager := subscription.NewManager(keyCache, loader, jwtKey, 5*time.Minute)
	rateLimiter := subscription.NewRateLimiter(rlCache)

	httpCache, err := newCache(cfg)
	if err != nil {
		log.Error("failed to construct http rate-limit cache", "error", err)
		os.Exit(1)
	}
	defer httpCache.Close()

	srv := subscription.NewServer(st, b, c, manager, rateLimiter, httpCache, cfg.HTTPRateLimitPerMinute, subscription.Config{
		HeartbeatInterval: cfg.HeartbeatEvery,
		ClientTimeout:     cfg.ClientTimeout,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.InfoContext(ctx, "api server starting", "addr", addr)

	var serveErr error
	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		serveErr = httpServer.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		serveErr = httpServer.ListenAndServe()
	}
	if serveErr != nil && serveErr != http.ErrServerClosed {
		log.Error("api server exited with error", "error", serveErr)
		os.Exit(1)
	}
	log.Info("api server shut down cleanly")
}
