package main

import (
	"context"
	"crypto/rsa"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ETAnderson/dealboard/internal/api/auth"
	"github.com/ETAnderson/dealboard/internal/api/handlers"
	"github.com/ETAnderson/dealboard/internal/api/middleware"
	"github.com/ETAnderson/dealboard/internal/clicks"
	"github.com/ETAnderson/dealboard/internal/config"
	"github.com/ETAnderson/dealboard/internal/logging"
	"github.com/ETAnderson/dealboard/internal/migrate"
	"github.com/ETAnderson/dealboard/internal/preview"
	"github.com/ETAnderson/dealboard/internal/state"
)

func main() {
	cfg := config.Load()
	logger := logging.NewStdLogger("api-service ")

	logger.Printf("ENV=%q STATE_BACKEND=%q DB_DSN_set=%v REDIS_set=%v KAFKA_set=%v",
		cfg.Env, cfg.StateBackend, cfg.DSN != "", cfg.RedisAddr != "", len(cfg.KafkaBrokers) > 0)

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

	if cfg.RunMigrations && factoryRes.DB != nil {
		dir := filepath.Join(cfg.MigrationsDir, factoryRes.Dialect.Name)
		applied, err := migrate.ApplyDir(context.Background(), factoryRes.DB, factoryRes.Dialect.Name, dir)
		if err != nil {
			logger.Printf("migrations failed: %v", err)
			os.Exit(1)
		}
		logger.Printf("migrations applied: %d", len(applied))
	}

	var cache state.Cache = state.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc := state.NewRedisCache(cfg.RedisAddr)
		defer rc.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			logger.Printf("redis ping failed (continuing, reads fall through): %v", err)
		}
		cancel()
		cache = rc
	}
	store := state.NewCachedStore(factoryRes.Store, cache, cfg.CatalogCacheTTL, logger)

	var recorder clicks.Recorder = clicks.StoreRecorder{Store: store}
	if len(cfg.KafkaBrokers) > 0 {
		w := clicks.NewKafkaWriter(cfg.KafkaBrokers, cfg.ClickTopic)
		defer w.Close()
		recorder = clicks.KafkaPublisher{Writer: w}
	}

	pub := loadPublicKey(cfg.Env, logger)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Printf("TRUSTED_PROXIES: %v", err)
		os.Exit(1)
	}

	router := handlers.Routes(handlers.Deps{
		Env:                cfg.Env,
		PublicKey:          pub,
		Store:              store,
		Recorder:           recorder,
		Preview:            preview.NewFetcher(cfg.PreviewTimeout),
		Log:                logger,
		ClickRatePerSecond: cfg.ClickRatePerSecond,
		ClickRateBurst:     cfg.ClickRateBurst,
		TrustedProxies:     proxies,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("starting (env=%s) on %s", cfg.Env, server.Addr)

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Printf("server error: %v", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, server)
}

// loadPublicKey reads JWT_PUBLIC_KEY_PEM. Outside dev a missing key is fatal.
func loadPublicKey(env string, logger interface{ Printf(string, ...any) }) *rsa.PublicKey {
	pub, err := auth.LoadRSAPublicKeyFromEnv("JWT_PUBLIC_KEY_PEM")
	if err == nil {
		return pub
	}
	if strings.EqualFold(env, "dev") {
		logger.Printf("no admin public key (%v); dev requests without a token run as dev-admin", err)
		return nil
	}
	logger.Printf("admin public key required outside dev: %v", err)
	os.Exit(1)
	return nil
}

func waitForShutdown(logger interface{ Printf(string, ...any) }, server *http.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Printf("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = server.Shutdown(ctx)
	logger.Printf("shutdown complete")
}
