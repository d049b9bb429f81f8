package redis

import (
	"fmt"

	"github.com/luckynine/backend/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "luckynine"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// registeredUserKey returns the Redis key for a RegisteredUser
func registeredUserKey(userID model.UserID) string {
	return fmt.Sprintf("%s:registered_user:%s", keyPrefix, userID)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// allSessionsIndexKey returns the Redis key for the SET of all session ids
func allSessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// openSessionsIndexKey returns the Redis key for the SET of non-terminal session ids
func openSessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:open_sessions", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(sessionID model.SessionID, userID model.UserID) string {
	return fmt.Sprintf("%s:player:%s:%s", keyPrefix, sessionID, userID)
}

// playersIndexKey returns the Redis key for the SET of a session's player user ids
func playersIndexKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:players:%s", keyPrefix, sessionID)
}

// queueEntryKey returns the Redis key for a QueueEntry
func queueEntryKey(sessionID model.SessionID, userID model.UserID) string {
	return fmt.Sprintf("%s:queue_entry:%s:%s", keyPrefix, sessionID, userID)
}

// queueKey returns the Redis key for a session's queue ZSET (scored by position)
func queueKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:queue:%s", keyPrefix, sessionID)
}

// globalQueueKey returns the Redis key for the system-wide queue ZSET
func globalQueueKey() string {
	return fmt.Sprintf("%s:idx:queue_global", keyPrefix)
}

// winsKey returns the Redis key for the win ZSET (scored by timestamp)
func winsKey() string {
	return fmt.Sprintf("%s:wins", keyPrefix)
}
