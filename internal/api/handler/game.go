package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/luckynine/backend/internal/api/middleware"
	"github.com/luckynine/backend/internal/api/request"
	"github.com/luckynine/backend/internal/api/response"
	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/services/leaderboard"
	"github.com/luckynine/backend/internal/services/session"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	sessions    session.ControllerInterface
	leaderboard *leaderboard.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessions session.ControllerInterface, leaderboard *leaderboard.Service) *GameHandler {
	return &GameHandler{
		sessions:    sessions,
		leaderboard: leaderboard,
	}
}

// Join handles POST /api/v1/game/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.sessions.Join(r.Context(), user.ID, req.ChosenNumber)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponseFromResult(result))
}

// Leave handles DELETE /api/v1/game/leave/{session_id}
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	detail, err := h.sessions.Leave(r.Context(), user.ID, sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if detail == nil {
		// Unknown session; leaving is idempotent
		response.NoContent(w)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionDetailFromModel(detail))
}

// Active handles GET /api/v1/game/active
func (h *GameHandler) Active(w http.ResponseWriter, r *http.Request) {
	details, err := h.sessions.ListActive(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.SessionDetail, len(details))
	for i, d := range details {
		out[i] = response.SessionDetailFromModel(d)
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/game/sessions/{session_id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	detail, err := h.sessions.GetSessionDetail(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionDetailFromModel(detail))
}

// SessionsByDate handles GET /api/v1/game/sessions-by-date
func (h *GameHandler) SessionsByDate(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.sessions.SessionsByDate(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionsByDateFromModel(grouped))
}

// Top handles GET /api/v1/game/top and GET /api/v1/game/top/{period}
func (h *GameHandler) Top(w http.ResponseWriter, r *http.Request) {
	period, err := leaderboard.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		WriteError(w, err)
		return
	}

	winners, err := h.leaderboard.TopByPeriod(r.Context(), period)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(string(period), winners))
}
