package response

import (
	"time"

	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/services/auth"
	"github.com/luckynine/backend/internal/services/session"
)

// User represents a user in API responses
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		DisplayName: u.DisplayName,
		IsGuest:     u.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// AuthResponseFromSession creates an AuthResponse from an auth session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:  UserFromModel(&s.User),
		Token: s.Token,
	}
}

// Player represents a session participant
type Player struct {
	UserID       string    `json:"user_id"`
	ChosenNumber int       `json:"chosen_number"`
	JoinedAt     time.Time `json:"joined_at"`
}

// PlayerFromModel converts model.Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		UserID:       string(p.UserID),
		ChosenNumber: p.ChosenNumber,
		JoinedAt:     p.JoinedAt,
	}
}

// QueueEntry represents a queued user
type QueueEntry struct {
	UserID       string    `json:"user_id"`
	ChosenNumber int       `json:"chosen_number"`
	Position     int       `json:"position"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// QueueEntryFromModel converts model.QueueEntry
func QueueEntryFromModel(q *model.QueueEntry) QueueEntry {
	return QueueEntry{
		UserID:       string(q.UserID),
		ChosenNumber: q.ChosenNumber,
		Position:     q.Position,
		EnqueuedAt:   q.EnqueuedAt,
	}
}

// Session represents a game session in API responses
type Session struct {
	ID            string    `json:"id"`
	CreatedBy     string    `json:"created_by"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	WinningNumber int       `json:"winning_number,omitempty"`
	MaxPlayers    int       `json:"max_players"`
}

// SessionFromModel converts model.Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:            string(s.ID),
		CreatedBy:     string(s.CreatedBy),
		Status:        string(s.Status),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		WinningNumber: s.WinningNumber,
		MaxPlayers:    s.MaxPlayers,
	}
}

// SessionDetail represents a session with its players and queue
type SessionDetail struct {
	Session
	Players []Player     `json:"players"`
	Queue   []QueueEntry `json:"queue"`
}

// SessionDetailFromModel converts model.SessionDetail
func SessionDetailFromModel(d *model.SessionDetail) SessionDetail {
	players := make([]Player, len(d.Players))
	for i, p := range d.Players {
		players[i] = PlayerFromModel(p)
	}
	queue := make([]QueueEntry, len(d.Queue))
	for i, q := range d.Queue {
		queue[i] = QueueEntryFromModel(q)
	}
	return SessionDetail{
		Session: SessionFromModel(d.Session),
		Players: players,
		Queue:   queue,
	}
}

// JoinResponse is the response after a join request
type JoinResponse struct {
	Message string        `json:"message"`
	Session SessionDetail `json:"session"`
}

// JoinResponseFromResult converts a session.JoinResult
func JoinResponseFromResult(r *session.JoinResult) JoinResponse {
	return JoinResponse{
		Message: r.Message,
		Session: SessionDetailFromModel(r.Session),
	}
}

// Winner represents one leaderboard row
type Winner struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalWins   int    `json:"total_wins"`
}

// LeaderboardResponse is the response for leaderboard queries
type LeaderboardResponse struct {
	Period  string   `json:"period"`
	Winners []Winner `json:"winners"`
}

// LeaderboardFromModel builds a LeaderboardResponse
func LeaderboardFromModel(period string, rows []model.WinnerCount) LeaderboardResponse {
	winners := make([]Winner, len(rows))
	for i, row := range rows {
		winners[i] = Winner{
			UserID:      string(row.UserID),
			DisplayName: row.DisplayName,
			TotalWins:   row.TotalWins,
		}
	}
	return LeaderboardResponse{Period: period, Winners: winners}
}

// SessionsByDateFromModel groups sessions keyed by calendar date
func SessionsByDateFromModel(grouped map[string][]*model.Session) map[string][]Session {
	out := make(map[string][]Session, len(grouped))
	for date, sessions := range grouped {
		rows := make([]Session, len(sessions))
		for i, s := range sessions {
			rows[i] = SessionFromModel(s)
		}
		out[date] = rows
	}
	return out
}
