package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/adapters/config"
	"morpheus/internal/adapters/embeddings"
	"morpheus/internal/adapters/errors/noop"
	"morpheus/internal/adapters/errors/sentry"
	"morpheus/internal/adapters/postgres"
	"morpheus/internal/adapters/redis"
	"morpheus/internal/adapters/search"
	"morpheus/internal/agents"
	"morpheus/internal/api"
	"morpheus/internal/api/health"
	"morpheus/internal/delegator"
	repo "morpheus/internal/repository/postgres"
	dcaservice "morpheus/internal/services/dca"
	"morpheus/internal/services/session"
	"morpheus/internal/workers"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := initLogger(cfg); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Initialize storage
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Storage initialized")

	// Initialize AI providers
	providerRegistry, err := ai.BuildRegistry(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to build AI provider registry: %v", err)
	}

	chatProvider, err := ai.DefaultProvider(providerRegistry, cfg.AI)
	if err != nil {
		log.Fatalf("Failed to resolve default AI provider: %v", err)
	}

	// Embeddings are optional; the default agent degrades to plain chat
	// completions without them. embedder stays nil unless construction
	// succeeds.
	var embedder embeddings.Provider
	if cfg.AI.OpenAIKey != "" {
		p, err := embeddings.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.EmbeddingModel, cfg.AI.Timeout)
		if err != nil {
			log.Warnf("Embeddings unavailable: %v", err)
		} else {
			embedder = p
		}
	} else {
		log.Warn("No OpenAI key configured, memory retrieval disabled")
	}

	// Initialize services
	strategyRepo := repo.NewStrategyRepository(pgClient.DB())
	memoryRepo := repo.NewMemoryRepository(pgClient.DB())
	strategies := dcaservice.NewService(strategyRepo)
	sessions := session.NewStore(redisClient, cfg.Session.TTL, redis.IsNil)
	searchClient := search.NewClient(cfg.Search)

	// Background cleanup of expired memories
	cleanerCtx, stopCleaner := context.WithCancel(context.Background())
	defer stopCleaner()
	go workers.NewMemoryCleaner(memoryRepo, time.Hour).Run(cleanerCtx)

	// Build the agent registry and delegator
	descriptors, err := agents.LoadDescriptors(cfg.Agents.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load agent descriptors: %v", err)
	}

	registry := delegator.BuildRegistry(descriptors, delegator.Deps{
		Chat:       chatProvider,
		Model:      cfg.AI.Model,
		Embeddings: embedder,
		Memories:   memoryRepo,
		Strategies: strategies,
		Search:     searchClient,
		Sessions:   sessions,
	})
	if registry.Len() == 0 {
		log.Fatal("No agents could be initialized")
	}

	selector := delegator.NewSelector(chatProvider, cfg.AI.Model, descriptors)
	dispatcher := delegator.New(registry, selector)

	// HTTP server
	chatHandler := api.NewChatHandler(dispatcher, sessions, log)
	healthHandler := health.New(log, pgClient, redisClient, cfg.App.Name, cfg.App.Version)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, chatHandler, healthHandler, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("System initialized successfully")

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %s, shutting down...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	_ = errorTracker.Flush(shutdownCtx)
	log.Info("Shutdown complete")
}

// loadConfig loads application configuration from environment
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// initLogger initializes structured logging
func initLogger(cfg *config.Config) error {
	return logger.Init(cfg.App.LogLevel, cfg.App.Env)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
