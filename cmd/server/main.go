package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/odds-cache-service/internal/cache"
	"github.com/cypherlabdev/odds-cache-service/internal/config"
	httpHandler "github.com/cypherlabdev/odds-cache-service/internal/handler/http"
	"github.com/cypherlabdev/odds-cache-service/internal/messaging"
	"github.com/cypherlabdev/odds-cache-service/internal/metrics"
	"github.com/cypherlabdev/odds-cache-service/internal/repository"
	"github.com/cypherlabdev/odds-cache-service/internal/storage"
	"github.com/cypherlabdev/odds-cache-service/internal/upstream"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	configPath := os.Getenv("ODDS_CACHE_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting odds-cache-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Create durable snapshot store
	store, ready, closeStore := setupStore(ctx, cfg, logger)
	defer closeStore()

	// Create cache manager
	manager := cache.NewManager(
		cfg.Cache.Policy(),
		store,
		logger,
		cache.WithKey(cfg.Cache.Key),
		cache.WithMetrics(m),
	)
	logger.Info().
		Dur("timeout", manager.Policy().Timeout()).
		Bool("never_expires", manager.Policy().NeverExpires()).
		Str("backend", cfg.Cache.Backend).
		Msg("cache manager initialized")

	// Create upstream source and repository
	source := setupUpstream(cfg.Upstream, logger)
	repo := repository.NewOddsRepository(manager, source, logger, repository.WithMetrics(m))
	logger.Info().Str("upstream", cfg.Upstream.Kind).Msg("odds repository initialized")

	// Start Kafka consumer in goroutine
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			},
			manager,
			m,
			logger,
		)
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Initialize HTTP handler
	oddsHandler := httpHandler.NewOddsHandler(repo, logger)
	logger.Info().Msg("HTTP handler initialized")

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, ready)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	oddsHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// setupStore creates the configured snapshot backend. It returns a readiness
// check and a close function alongside the store.
func setupStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.SnapshotStore, func(context.Context) error, func()) {
	noop := func(context.Context) error { return nil }

	switch cfg.Cache.Backend {
	case config.BackendFile:
		logger.Info().Str("dir", cfg.Cache.FileDir).Msg("using file snapshot store")
		return storage.NewFileStore(osfs.New(cfg.Cache.FileDir), ".", logger), noop, func() {}

	case config.BackendMemory:
		logger.Warn().Msg("using in-memory snapshot store, cached odds will not survive restarts")
		return storage.NewMemoryStore(), noop, func() {}

	default:
		redisStore := storage.NewRedisStore(
			storage.RedisStoreConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			},
			logger,
		)

		// Test Redis connection
		if err := redisStore.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

		return redisStore, redisStore.Ping, func() {
			if err := redisStore.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close Redis client")
			}
		}
	}
}

// setupUpstream creates the configured odds source
func setupUpstream(cfg config.UpstreamConfig, logger zerolog.Logger) repository.UpstreamSource {
	if cfg.Kind == config.UpstreamHTTP {
		return upstream.NewHTTPSource(upstream.HTTPSourceConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Sport:   cfg.Sport,
			Regions: cfg.Regions,
			Markets: cfg.Markets,
			Timeout: cfg.Timeout,
		}, logger)
	}

	return upstream.NewGenerator(
		logger,
		upstream.WithEventCount(cfg.EventCount),
		upstream.WithLatency(cfg.Latency),
	)
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "odds-cache").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if the snapshot store is reachable
func readyHandler(w http.ResponseWriter, r *http.Request, ready func(context.Context) error) {
	if err := ready(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("snapshot store unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
