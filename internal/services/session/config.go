package session

import (
	"fmt"
	"time"
)

// Config holds the lifecycle timings and capacity for game sessions
type Config struct {
	// MaxPlayers is the player capacity of a session; overflow joins queue
	MaxPlayers int
	// WaitingDuration is how long a new session accepts players before
	// the join window closes
	WaitingDuration time.Duration
	// ActiveDuration is how long an active session runs before the draw
	ActiveDuration time.Duration
	// InactivityTimeout force-ends a session with no joins or leaves,
	// regardless of its phase deadline
	InactivityTimeout time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		MaxPlayers:        10,
		WaitingDuration:   10 * time.Second,
		ActiveDuration:    20 * time.Second,
		InactivityTimeout: 2 * time.Minute,
	}
}

// Validate checks that all configured values are usable
func (c Config) Validate() error {
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("max players must be positive, got %d", c.MaxPlayers)
	}
	if c.WaitingDuration <= 0 {
		return fmt.Errorf("waiting duration must be positive, got %s", c.WaitingDuration)
	}
	if c.ActiveDuration <= 0 {
		return fmt.Errorf("active duration must be positive, got %s", c.ActiveDuration)
	}
	if c.InactivityTimeout <= 0 {
		return fmt.Errorf("inactivity timeout must be positive, got %s", c.InactivityTimeout)
	}
	return nil
}
