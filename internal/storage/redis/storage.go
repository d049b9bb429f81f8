package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Apply TTL only for guest users
	var ttl time.Duration
	if user.IsGuest {
		ttl = s.cfg.GuestUserTTL
	}

	return s.client.Set(ctx, userKey(user.ID), data, ttl).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Registered user operations

func (s *Storage) SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error {
	data, err := json.Marshal(ru)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredUserKey(ru.UserID), data, 0) // No TTL
	pipe.Set(ctx, usernameIndexKey(ru.Username), string(ru.UserID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error) {
	data, err := s.client.Get(ctx, registeredUserKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var ru model.RegisteredUser
	if err := json.Unmarshal(data, &ru); err != nil {
		return nil, err
	}
	return &ru, nil
}

func (s *Storage) GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error) {
	// Look up user ID from username index
	userIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetRegisteredUser(ctx, model.UserID(userIDStr))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Keep the open-sessions index in sync with the status
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, allSessionsIndexKey(), string(session.ID))
	if session.IsTerminal() {
		pipe.SRem(ctx, openSessionsIndexKey(), string(session.ID))
	} else {
		pipe.SAdd(ctx, openSessionsIndexKey(), string(session.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) ListNonTerminalSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listSessionsFromIndex(ctx, openSessionsIndexKey())
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listSessionsFromIndex(ctx, allSessionsIndexKey())
}

func (s *Storage) listSessionsFromIndex(ctx context.Context, indexKey string) ([]*model.Session, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Session may have expired
		}
		var session model.Session
		if err := json.Unmarshal([]byte(val.(string)), &session); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Player operations

func (s *Storage) AddPlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	indexKey := playersIndexKey(player.SessionID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.SessionID, player.UserID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, string(player.UserID))
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL) // Keep index TTL in sync
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RemovePlayer(ctx context.Context, sessionID model.SessionID, userID model.UserID) error {
	removed, err := s.client.Del(ctx, playerKey(sessionID, userID)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return model.ErrPlayerNotFound
	}
	return s.client.SRem(ctx, playersIndexKey(sessionID), string(userID)).Err()
}

func (s *Storage) ListPlayers(ctx context.Context, sessionID model.SessionID) ([]*model.Player, error) {
	userIDs, err := s.client.SMembers(ctx, playersIndexKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = playerKey(sessionID, model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		players = append(players, &player)
	}

	sort.Slice(players, func(i, j int) bool {
		if !players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinedAt.Before(players[j].JoinedAt)
		}
		return players[i].UserID < players[j].UserID
	})
	return players, nil
}

// Queue operations

func (s *Storage) AddQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	member := redis.Z{
		Score:  float64(entry.Position),
		Member: string(entry.UserID),
	}
	globalMember := redis.Z{
		Score:  float64(entry.Position),
		Member: globalQueueMember(entry.SessionID, entry.UserID),
	}

	qKey := queueKey(entry.SessionID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, queueEntryKey(entry.SessionID, entry.UserID), data, s.cfg.SessionTTL)
	pipe.ZAdd(ctx, qKey, member)
	pipe.ZAdd(ctx, globalQueueKey(), globalMember)
	pipe.Expire(ctx, qKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, sessionID model.SessionID, userID model.UserID) error {
	removed, err := s.client.Del(ctx, queueEntryKey(sessionID, userID)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return model.ErrQueueEntryNotFound
	}

	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, queueKey(sessionID), string(userID))
	pipe.ZRem(ctx, globalQueueKey(), globalQueueMember(sessionID, userID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListQueue(ctx context.Context, sessionID model.SessionID) ([]*model.QueueEntry, error) {
	userIDs, err := s.client.ZRange(ctx, queueKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return []*model.QueueEntry{}, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = queueEntryKey(sessionID, model.UserID(id))
	}
	return s.fetchQueueEntries(ctx, keys)
}

func (s *Storage) ListAllQueued(ctx context.Context) ([]*model.QueueEntry, error) {
	members, err := s.client.ZRange(ctx, globalQueueKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*model.QueueEntry{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		sessionID, userID, ok := parseGlobalQueueMember(m)
		if !ok {
			continue
		}
		keys = append(keys, queueEntryKey(sessionID, userID))
	}
	return s.fetchQueueEntries(ctx, keys)
}

func (s *Storage) CountQueued(ctx context.Context) (int, error) {
	count, err := s.client.ZCard(ctx, globalQueueKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *Storage) fetchQueueEntries(ctx context.Context, keys []string) ([]*model.QueueEntry, error) {
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.QueueEntry, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Entry may have expired
		}
		var entry model.QueueEntry
		if err := json.Unmarshal([]byte(val.(string)), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// globalQueueMember encodes a (session, user) pair as a ZSET member.
// Neither id may contain '/': both are generated from a url-safe alphabet.
func globalQueueMember(sessionID model.SessionID, userID model.UserID) string {
	return fmt.Sprintf("%s/%s", sessionID, userID)
}

func parseGlobalQueueMember(member string) (model.SessionID, model.UserID, bool) {
	idx := strings.IndexByte(member, '/')
	if idx < 0 {
		return "", "", false
	}
	return model.SessionID(member[:idx]), model.UserID(member[idx+1:]), true
}

// Win operations

func (s *Storage) RecordWin(ctx context.Context, win *model.WinRecord) error {
	// Member carries the timestamp for uniqueness; score drives range queries
	member := fmt.Sprintf("%s/%d", win.UserID, win.CreatedAt.UnixNano())
	return s.client.ZAdd(ctx, winsKey(), redis.Z{
		Score:  float64(win.CreatedAt.Unix()),
		Member: member,
	}).Err()
}

func (s *Storage) TopWinners(ctx context.Context, since time.Time, limit int) ([]model.WinnerCount, error) {
	min := "-inf"
	if !since.IsZero() {
		min = strconv.FormatInt(since.Unix(), 10)
	}

	members, err := s.client.ZRangeByScore(ctx, winsKey(), &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[model.UserID]int)
	for _, m := range members {
		idx := strings.IndexByte(m, '/')
		if idx < 0 {
			continue
		}
		counts[model.UserID(m[:idx])]++
	}

	result := make([]model.WinnerCount, 0, len(counts))
	for userID, total := range counts {
		row := model.WinnerCount{UserID: userID, TotalWins: total}
		if user, err := s.GetUser(ctx, userID); err == nil {
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
