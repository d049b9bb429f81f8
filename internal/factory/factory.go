package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/luckynine/backend/internal/dependencies/clock"
	"github.com/luckynine/backend/internal/dependencies/random"
	"github.com/luckynine/backend/internal/services/auth"
	"github.com/luckynine/backend/internal/services/leaderboard"
	"github.com/luckynine/backend/internal/services/scheduler"
	"github.com/luckynine/backend/internal/services/session"
	"github.com/luckynine/backend/internal/sse"
	"github.com/luckynine/backend/internal/storage"
	"github.com/luckynine/backend/internal/storage/memory"
	redisstorage "github.com/luckynine/backend/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	SessionController  *session.Controller
	Scheduler          *scheduler.Scheduler
	LeaderboardService *leaderboard.Service
	AuthService        *auth.Service
	Hub                *sse.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// SessionConfig holds session lifecycle settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// SchedulerConfig holds scheduler settings (optional)
	// If zero value, defaults to scheduler.DefaultConfig()
	SchedulerConfig scheduler.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	sessionCfg := cfg.SessionConfig
	if sessionCfg == (session.Config{}) {
		sessionCfg = session.DefaultConfig()
	}
	if err := sessionCfg.Validate(); err != nil {
		return nil, err
	}

	schedulerCfg := cfg.SchedulerConfig
	if schedulerCfg == (scheduler.Config{}) {
		schedulerCfg = scheduler.DefaultConfig()
	}
	if err := schedulerCfg.Validate(); err != nil {
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, sessionCfg, schedulerCfg, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sessionCfg session.Config,
	schedulerCfg scheduler.Config,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	hub := sse.NewHub(logger)
	notifier := sse.NewNotifier(hub, logger)
	sessionController := session.NewController(store, clk, rnd, notifier, sessionCfg, logger)
	sched := scheduler.New(sessionController, schedulerCfg, logger)
	leaderboardService := leaderboard.New(store, clk)
	authService := auth.New(store, clk, authCfg)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		SessionController:  sessionController,
		Scheduler:          sched,
		LeaderboardService: leaderboardService,
		AuthService:        authService,
		Hub:                hub,
	}
}
