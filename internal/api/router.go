package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/luckynine/backend/internal/api/handler"
	"github.com/luckynine/backend/internal/api/middleware"
	"github.com/luckynine/backend/internal/services/auth"
	"github.com/luckynine/backend/internal/services/leaderboard"
	"github.com/luckynine/backend/internal/services/session"
	"github.com/luckynine/backend/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	SessionController  session.ControllerInterface
	LeaderboardService *leaderboard.Service
	Hub                *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.SessionController, cfg.LeaderboardService)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player account routes (no auth required for creating users/logging in)
	api.HandleFunc("/players/guest", userHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", userHandler.Login).Methods(http.MethodPost)

	// Protected player account routes
	userProtected := api.PathPrefix("/players").Subrouter()
	userProtected.Use(authMiddleware)
	userProtected.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)

	// Game routes (all require auth)
	game := api.PathPrefix("/game").Subrouter()
	game.Use(authMiddleware)
	game.HandleFunc("/join", gameHandler.Join).Methods(http.MethodPost)
	game.HandleFunc("/leave/{session_id}", gameHandler.Leave).Methods(http.MethodDelete)
	game.HandleFunc("/active", gameHandler.Active).Methods(http.MethodGet)
	game.HandleFunc("/sessions/{session_id}", gameHandler.Get).Methods(http.MethodGet)
	game.HandleFunc("/sessions-by-date", gameHandler.SessionsByDate).Methods(http.MethodGet)
	game.HandleFunc("/top", gameHandler.Top).Methods(http.MethodGet)
	game.HandleFunc("/top/{period}", gameHandler.Top).Methods(http.MethodGet)

	// Event stream (requires auth)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
