package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users           map[model.UserID]*model.User
	registeredUsers map[model.UserID]*model.RegisteredUser
	usernameIndex   map[string]model.UserID
	sessions        map[model.SessionID]*model.Session
	players         map[model.SessionID][]*model.Player
	queues          map[model.SessionID][]*model.QueueEntry
	wins            []*model.WinRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:           make(map[model.UserID]*model.User),
		registeredUsers: make(map[model.UserID]*model.RegisteredUser),
		usernameIndex:   make(map[string]model.UserID),
		sessions:        make(map[model.SessionID]*model.Session),
		players:         make(map[model.SessionID][]*model.Player),
		queues:          make(map[model.SessionID][]*model.QueueEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Registered user operations

func (s *Storage) SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredUsers[ru.UserID] = ru
	s.usernameIndex[ru.Username] = ru.UserID
	return nil
}

func (s *Storage) GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ru, ok := s.registeredUsers[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return ru, nil
}

func (s *Storage) GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	ru, ok := s.registeredUsers[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return ru, nil
}

// Session operations

// Sessions are stored and returned by value copy. Callers mutate the
// session they hold and save it back, so sharing the stored pointer
// would let those writes race concurrent readers.
func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *Storage) ListNonTerminalSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []*model.Session
	for _, session := range s.sessions {
		if !session.IsTerminal() {
			cp := *session
			sessions = append(sessions, &cp)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		cp := *session
		sessions = append(sessions, &cp)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Player operations

func (s *Storage) AddPlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.SessionID] = append(s.players[player.SessionID], player)
	return nil
}

func (s *Storage) RemovePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := s.players[sessionID]
	for i, p := range players {
		if p.UserID == userID {
			s.players[sessionID] = append(players[:i], players[i+1:]...)
			return nil
		}
	}
	return model.ErrPlayerNotFound
}

func (s *Storage) ListPlayers(ctx context.Context, sessionID model.SessionID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := s.players[sessionID]
	result := make([]*model.Player, len(players))
	copy(result, players)
	return result, nil
}

// Queue operations

func (s *Storage) AddQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[entry.SessionID] = append(s.queues[entry.SessionID], entry)
	return nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, sessionID model.SessionID, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[sessionID]
	for i, q := range queue {
		if q.UserID == userID {
			s.queues[sessionID] = append(queue[:i], queue[i+1:]...)
			return nil
		}
	}
	return model.ErrQueueEntryNotFound
}

func (s *Storage) ListQueue(ctx context.Context, sessionID model.SessionID) ([]*model.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	queue := s.queues[sessionID]
	result := make([]*model.QueueEntry, len(queue))
	copy(result, queue)
	sortQueue(result)
	return result, nil
}

func (s *Storage) ListAllQueued(ctx context.Context) ([]*model.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.QueueEntry
	for _, queue := range s.queues {
		result = append(result, queue...)
	}
	sortQueue(result)
	return result, nil
}

func (s *Storage) CountQueued(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, queue := range s.queues {
		count += len(queue)
	}
	return count, nil
}

func sortQueue(queue []*model.QueueEntry) {
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].Position != queue[j].Position {
			return queue[i].Position < queue[j].Position
		}
		return queue[i].EnqueuedAt.Before(queue[j].EnqueuedAt)
	})
}

// Win operations

func (s *Storage) RecordWin(ctx context.Context, win *model.WinRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins = append(s.wins, win)
	return nil
}

func (s *Storage) TopWinners(ctx context.Context, since time.Time, limit int) ([]model.WinnerCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.UserID]int)
	for _, win := range s.wins {
		if win.CreatedAt.Before(since) {
			continue
		}
		counts[win.UserID]++
	}

	result := make([]model.WinnerCount, 0, len(counts))
	for userID, total := range counts {
		row := model.WinnerCount{UserID: userID, TotalWins: total}
		if user, ok := s.users[userID]; ok {
			row.DisplayName = user.DisplayName
		}
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalWins != result[j].TotalWins {
			return result[i].TotalWins > result[j].TotalWins
		}
		return result[i].UserID < result[j].UserID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
