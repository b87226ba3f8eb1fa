package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghostkyle24/bonusmarmitas/internal/api"
	"github.com/ghostkyle24/bonusmarmitas/internal/capi"
	"github.com/ghostkyle24/bonusmarmitas/internal/config"
	"github.com/ghostkyle24/bonusmarmitas/internal/dedup"
	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/logger"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	if cfg.Meta.AccessToken == "" {
		// Not fatal: the handler answers 500 until the token arrives,
		// but the operator should know at startup
		logger.Warn("META_ACCESS_TOKEN not set, conversions will be rejected")
	}

	gate := buildGate(cfg)
	forwarder := capi.NewClient(cfg.Meta)
	server := api.NewServer(cfg, gate, forwarder)

	addr := cfg.Server.Addr()
	go func() {
		logger.Info("conversion api listening", "addr", addr, "pixel_id", cfg.Meta.PixelID)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err.Error())
	}
}

// buildGate selects the dedup backend: Redis behind a degrade-to-memory
// wrapper when configured, the in-process store alone otherwise.
func buildGate(cfg *config.Config) dedup.Store {
	memory := dedup.NewMemoryStore(cfg.Dedup.Retention())

	if !cfg.Redis.Enabled() {
		logger.Info("dedup gate running on in-process store only")
		return memory
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("invalid redis url, falling back to in-process store", "error", err.Error())
		return memory
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	client := redis.NewClient(opts)

	// A failed ping is not fatal; every call degrades individually
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, calls will degrade per-request", "error", err.Error())
	} else {
		logger.Info("dedup gate using redis", "retention", cfg.Dedup.Retention().String())
	}

	return dedup.NewFallbackStore(dedup.NewRedisStore(client, cfg.Dedup.Retention()), memory)
}
