package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrPlayerNotFound     = errors.New("player not in session")
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	ErrSessionEnded       = errors.New("session has already ended")

	// ErrMultipleOpenSessions indicates the single-open-session invariant was
	// broken. It is a concurrency bug, not a user error, and is never
	// resolved by silently picking one of the sessions.
	ErrMultipleOpenSessions = errors.New("multiple non-terminal sessions found")

	// Input errors
	ErrInvalidChosenNumber = errors.New("chosen number must be between 1 and 9")
	ErrInvalidPeriod       = errors.New("period must be one of all, day, week, month")
)
