package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ETAnderson/dealboard/internal/clicks"
	"github.com/ETAnderson/dealboard/internal/config"
	"github.com/ETAnderson/dealboard/internal/logging"
	"github.com/ETAnderson/dealboard/internal/state"
	"github.com/ETAnderson/dealboard/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := logging.NewStdLogger("worker-service ")

	logger.Printf("ENV=%q STATE_BACKEND=%q DB_DSN_set=%v KAFKA_set=%v",
		cfg.Env, cfg.StateBackend, cfg.DSN != "", len(cfg.KafkaBrokers) > 0)

	factoryRes, err := state.NewStore(context.Background(), state.FactoryConfig{
		Backend: cfg.StateBackend,
		DSN:     cfg.DSN,
	})
	if err != nil {
		logger.Printf("state store init failed: %v", err)
		os.Exit(1)
	}
	if factoryRes.DB != nil {
		defer factoryRes.DB.Close()
	}
	store := factoryRes.Store

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Runner{
			Name:      "idempotency-purge",
			PollEvery: 10 * time.Minute,
			Task:      worker.PurgeIdempotency(store, logger),
			Log:       logger,
		}.Run(gctx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		reader := clicks.NewKafkaReader(cfg.KafkaBrokers, cfg.ClickTopic, cfg.ClickGroupID)
		defer reader.Close()

		g.Go(func() error {
			logger.Printf("consuming %s as %s", cfg.ClickTopic, cfg.ClickGroupID)
			return clicks.Consumer{Reader: reader, Store: store, Log: logger}.Run(gctx)
		})
	} else {
		logger.Printf("KAFKA_BROKERS empty; click consumer disabled")
	}

	logger.Printf("starting (env=%s)", cfg.Env)

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
	logger.Printf("shutdown complete")
}
