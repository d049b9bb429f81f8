package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/luckynine/backend/internal/api"
	"github.com/luckynine/backend/internal/factory"
	"github.com/luckynine/backend/internal/services/scheduler"
	"github.com/luckynine/backend/internal/services/session"
	redisstorage "github.com/luckynine/backend/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		SessionConfig:   sessionConfigFromEnv(),
		SchedulerConfig: schedulerConfigFromEnv(),
		Logger:          logger,
		StorageType:     os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start the event hub and the session scheduler
	go app.Hub.Run()
	defer app.Hub.Close()

	go app.Scheduler.Run(ctx)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		SessionController:  app.SessionController,
		LeaderboardService: app.LeaderboardService,
		Hub:                app.Hub,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// sessionConfigFromEnv reads session lifecycle overrides from the environment
func sessionConfigFromEnv() session.Config {
	cfg := session.DefaultConfig()

	if v := os.Getenv("MAX_PLAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPlayers = n
		}
	}
	if d := durationEnv("WAITING_DURATION"); d > 0 {
		cfg.WaitingDuration = d
	}
	if d := durationEnv("ACTIVE_DURATION"); d > 0 {
		cfg.ActiveDuration = d
	}
	if d := durationEnv("INACTIVITY_TIMEOUT"); d > 0 {
		cfg.InactivityTimeout = d
	}

	return cfg
}

// schedulerConfigFromEnv reads scheduler overrides from the environment
func schedulerConfigFromEnv() scheduler.Config {
	cfg := scheduler.DefaultConfig()

	if d := durationEnv("TICK_PERIOD"); d > 0 {
		cfg.TickPeriod = d
	}

	return cfg
}

func durationEnv(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
