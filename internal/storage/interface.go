package storage

import (
	"context"
	"time"

	"github.com/luckynine/backend/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// Registered user operations
	SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error
	GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error)
	GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListNonTerminalSessions(ctx context.Context) ([]*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// Player operations
	AddPlayer(ctx context.Context, player *model.Player) error
	RemovePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) error
	ListPlayers(ctx context.Context, sessionID model.SessionID) ([]*model.Player, error)

	// Queue operations. Listings are ordered by position ascending.
	AddQueueEntry(ctx context.Context, entry *model.QueueEntry) error
	RemoveQueueEntry(ctx context.Context, sessionID model.SessionID, userID model.UserID) error
	ListQueue(ctx context.Context, sessionID model.SessionID) ([]*model.QueueEntry, error)
	ListAllQueued(ctx context.Context) ([]*model.QueueEntry, error)
	CountQueued(ctx context.Context) (int, error)

	// Win operations
	RecordWin(ctx context.Context, win *model.WinRecord) error
	TopWinners(ctx context.Context, since time.Time, limit int) ([]model.WinnerCount, error)
}
