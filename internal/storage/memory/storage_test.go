package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/luckynine/backend/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) session(id string, status model.SessionStatus, createdAt time.Time) *model.Session {
	return &model.Session{
		ID:               model.SessionID(id),
		CreatedBy:        "user-1",
		StartTime:        createdAt,
		EndTime:          createdAt.Add(30 * time.Second),
		Status:           status,
		MaxPlayers:       10,
		LastActivityTime: createdAt,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{ID: "user-1", DisplayName: "Alice", IsGuest: true, CreatedAt: s.now}

	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestRegisteredUserLookupByUsername() {
	ru := &model.RegisteredUser{UserID: "user-1", Username: "alice", PasswordHash: "hash", CreatedAt: s.now}
	s.Require().NoError(s.storage.SaveRegisteredUser(s.ctx, ru))

	retrieved, err := s.storage.GetRegisteredUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.UserID)

	_, err = s.storage.GetRegisteredUserByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	sess := s.session("sess-1", model.SessionWaiting, s.now)
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	retrieved, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, retrieved.Status)
}

func (s *StorageSuite) TestSessionsAreStoredAndReturnedByCopy() {
	sess := s.session("sess-1", model.SessionWaiting, s.now)
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	// Mutating the caller's session does not reach the stored copy
	sess.Status = model.SessionEnded

	stored, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, stored.Status)

	// Mutating a retrieved session does not reach the stored copy either
	stored.Status = model.SessionActive

	again, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, again.Status)

	listed, err := s.storage.ListNonTerminalSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	listed[0].Status = model.SessionEnded

	final, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, final.Status)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListNonTerminalSessionsExcludesEnded() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("sess-1", model.SessionEnded, s.now)))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("sess-2", model.SessionActive, s.now.Add(time.Minute))))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("sess-3", model.SessionWaiting, s.now.Add(2*time.Minute))))

	sessions, err := s.storage.ListNonTerminalSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("sess-2"), sessions[0].ID)
	s.Equal(model.SessionID("sess-3"), sessions[1].ID)
}

func (s *StorageSuite) TestListSessionsOrdersByCreation() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("sess-2", model.SessionEnded, s.now.Add(time.Minute))))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.session("sess-1", model.SessionEnded, s.now)))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("sess-1"), sessions[0].ID)
}

// Player tests

func (s *StorageSuite) TestAddRemoveListPlayers() {
	p1 := &model.Player{SessionID: "sess-1", UserID: "user-1", ChosenNumber: 5, JoinedAt: s.now}
	p2 := &model.Player{SessionID: "sess-1", UserID: "user-2", ChosenNumber: 3, JoinedAt: s.now.Add(time.Second)}

	s.Require().NoError(s.storage.AddPlayer(s.ctx, p1))
	s.Require().NoError(s.storage.AddPlayer(s.ctx, p2))

	players, err := s.storage.ListPlayers(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Len(players, 2)

	s.Require().NoError(s.storage.RemovePlayer(s.ctx, "sess-1", "user-1"))

	players, err = s.storage.ListPlayers(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.UserID("user-2"), players[0].UserID)
}

func (s *StorageSuite) TestRemovePlayerNotFound() {
	err := s.storage.RemovePlayer(s.ctx, "sess-1", "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Queue tests

func (s *StorageSuite) TestQueueOrderedByPosition() {
	// Inserted out of order to exercise the sort
	s.Require().NoError(s.storage.AddQueueEntry(s.ctx, &model.QueueEntry{
		SessionID: "sess-1", UserID: "user-b", ChosenNumber: 2, Position: 2, EnqueuedAt: s.now,
	}))
	s.Require().NoError(s.storage.AddQueueEntry(s.ctx, &model.QueueEntry{
		SessionID: "sess-1", UserID: "user-a", ChosenNumber: 1, Position: 1, EnqueuedAt: s.now,
	}))

	queue, err := s.storage.ListQueue(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().Len(queue, 2)
	s.Equal(model.UserID("user-a"), queue[0].UserID)
	s.Equal(model.UserID("user-b"), queue[1].UserID)
}

func (s *StorageSuite) TestListAllQueuedSpansSessions() {
	s.Require().NoError(s.storage.AddQueueEntry(s.ctx, &model.QueueEntry{
		SessionID: "sess-2", UserID: "user-b", ChosenNumber: 2, Position: 2, EnqueuedAt: s.now,
	}))
	s.Require().NoError(s.storage.AddQueueEntry(s.ctx, &model.QueueEntry{
		SessionID: "sess-1", UserID: "user-a", ChosenNumber: 1, Position: 1, EnqueuedAt: s.now,
	}))

	all, err := s.storage.ListAllQueued(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(model.UserID("user-a"), all[0].UserID)

	count, err := s.storage.CountQueued(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StorageSuite) TestRemoveQueueEntry() {
	s.Require().NoError(s.storage.AddQueueEntry(s.ctx, &model.QueueEntry{
		SessionID: "sess-1", UserID: "user-a", ChosenNumber: 1, Position: 1, EnqueuedAt: s.now,
	}))

	s.Require().NoError(s.storage.RemoveQueueEntry(s.ctx, "sess-1", "user-a"))

	err := s.storage.RemoveQueueEntry(s.ctx, "sess-1", "user-a")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)
}

// Win tests

func (s *StorageSuite) TestTopWinnersCountsAndSorts() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", DisplayName: "Alice"}))

	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-1", CreatedAt: s.now}))
	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-1", CreatedAt: s.now.Add(time.Minute)}))
	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-2", CreatedAt: s.now}))

	winners, err := s.storage.TopWinners(s.ctx, time.Time{}, 10)
	s.Require().NoError(err)
	s.Require().Len(winners, 2)
	s.Equal(model.UserID("user-1"), winners[0].UserID)
	s.Equal("Alice", winners[0].DisplayName)
	s.Equal(2, winners[0].TotalWins)
}

func (s *StorageSuite) TestTopWinnersRespectsSinceAndLimit() {
	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-old", CreatedAt: s.now.Add(-48 * time.Hour)}))
	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-1", CreatedAt: s.now}))
	s.Require().NoError(s.storage.RecordWin(s.ctx, &model.WinRecord{UserID: "user-2", CreatedAt: s.now}))

	winners, err := s.storage.TopWinners(s.ctx, s.now.Add(-time.Hour), 1)
	s.Require().NoError(err)
	s.Require().Len(winners, 1)
	s.NotEqual(model.UserID("user-old"), winners[0].UserID)
}
