package model

import "time"

// EventType identifies the type of lifecycle event
type EventType string

const (
	EventPlayerJoined   EventType = "player-joined"
	EventPlayerLeft     EventType = "player-left"
	EventPlayerPromoted EventType = "player-promoted"
	EventPlayerWon      EventType = "player-won"
	EventSessionEnded   EventType = "session-ended"
)

// Event is the base structure for all lifecycle events. Transitions return
// events rather than notifying directly, so the state machine stays decoupled
// from the notification transport.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID SessionID `json:"session_id"`
	Payload   any       `json:"payload,omitempty"`
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	UserID UserID `json:"user_id"`
}

// PlayerLeftPayload contains data for player left events
type PlayerLeftPayload struct {
	UserID UserID `json:"user_id"`
}

// PlayerPromotedPayload contains data for queue promotion events
type PlayerPromotedPayload struct {
	UserID UserID `json:"user_id"`
}

// PlayerWonPayload contains data for player won events
type PlayerWonPayload struct {
	UserID       UserID `json:"user_id"`
	ChosenNumber int    `json:"chosen_number"`
}

// SessionEndedPayload contains data for session ended events
type SessionEndedPayload struct {
	WinningNumber int      `json:"winning_number"`
	Winners       []UserID `json:"winners"`
}
