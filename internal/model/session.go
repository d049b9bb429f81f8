package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// SessionStatus represents the lifecycle phase of a session
type SessionStatus string

const (
	SessionWaiting SessionStatus = "WAITING" // Accepting players, join window open
	SessionActive  SessionStatus = "ACTIVE"  // Join window closed, counting down to the draw
	SessionEnded   SessionStatus = "ENDED"   // Terminal; winning number drawn
)

// Session represents one round of the number-guessing game.
//
// EndTime always holds the deadline of the *current* phase: the waiting-phase
// deadline while WAITING and the draw deadline while ACTIVE. At most one
// session system-wide is WAITING or ACTIVE at any instant.
type Session struct {
	ID               SessionID
	CreatedBy        UserID
	StartTime        time.Time
	EndTime          time.Time
	Status           SessionStatus
	WinningNumber    int // 0 until the session ends
	MaxPlayers       int
	LastActivityTime time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsTerminal returns true once the session has ended
func (s *Session) IsTerminal() bool {
	return s.Status == SessionEnded
}

// Player is a user occupying one of a session's limited slots.
// The (SessionID, UserID) pair is unique.
type Player struct {
	SessionID    SessionID
	UserID       UserID
	ChosenNumber int
	JoinedAt     time.Time
}

// QueueEntry is a user waiting for a slot, ordered by arrival.
// Positions are unique within a session and strictly increasing;
// promotion always takes the smallest position first.
type QueueEntry struct {
	SessionID    SessionID
	UserID       UserID
	ChosenNumber int
	Position     int
	EnqueuedAt   time.Time
}

// WinRecord records one win for a user. Append-only, never mutated.
type WinRecord struct {
	UserID    UserID
	CreatedAt time.Time
}

// WinnerCount is a leaderboard row
type WinnerCount struct {
	UserID      UserID
	DisplayName string
	TotalWins   int
}

// SessionDetail bundles a session with its live membership and queue
type SessionDetail struct {
	*Session
	Players []*Player
	Queue   []*QueueEntry
}

// HasPlayer returns true if the user is a live player in the session
func (d *SessionDetail) HasPlayer(id UserID) bool {
	for _, p := range d.Players {
		if p.UserID == id {
			return true
		}
	}
	return false
}

// InQueue returns true if the user is waiting in the session's queue
func (d *SessionDetail) InQueue(id UserID) bool {
	for _, q := range d.Queue {
		if q.UserID == id {
			return true
		}
	}
	return false
}
