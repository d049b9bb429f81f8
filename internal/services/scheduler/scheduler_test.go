package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/luckynine/backend/internal/dependencies/mocks"
	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/services/session"
	"github.com/luckynine/backend/internal/storage/memory"
	"github.com/luckynine/backend/internal/testutil"
)

// flakyStorage fails GetSession for chosen session ids
type flakyStorage struct {
	*memory.Storage
	mu      sync.Mutex
	failing map[model.SessionID]bool
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{
		Storage: memory.New(),
		failing: make(map[model.SessionID]bool),
	}
}

func (f *flakyStorage) setFailing(id model.SessionID, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[id] = fail
}

func (f *flakyStorage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	f.mu.Lock()
	bad := f.failing[id]
	f.mu.Unlock()
	if bad {
		return nil, errors.New("storage unavailable")
	}
	return f.Storage.GetSession(ctx, id)
}

type SchedulerSuite struct {
	suite.Suite
	storage    *flakyStorage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *session.Controller
	scheduler  *Scheduler
	ctx        context.Context
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.storage = newFlakyStorage()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()

	cfg := session.DefaultConfig()
	cfg.MaxPlayers = 2
	s.controller = session.NewController(
		s.storage, s.clock, s.random, session.NopEmitter{}, cfg, logger)
	s.scheduler = New(s.controller, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *SchedulerSuite) TestConfigValidation() {
	s.NoError(DefaultConfig().Validate())
	s.Error(Config{}.Validate())
	s.Error(Config{TickPeriod: -time.Second}.Validate())
}

func (s *SchedulerSuite) TestTickWithNoSessionsIsNoOp() {
	s.scheduler.Tick(s.ctx)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *SchedulerSuite) TestTickActivatesDueSession() {
	s.random.QueueString("sess-aaa")
	_, err := s.controller.Join(s.ctx, "user-1", 5)
	s.Require().NoError(err)

	s.scheduler.Tick(s.ctx)
	sess, err := s.storage.GetSession(s.ctx, "sess-aaa")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, sess.Status)

	s.clock.Advance(10 * time.Second)
	s.scheduler.Tick(s.ctx)
	sess, err = s.storage.GetSession(s.ctx, "sess-aaa")
	s.Require().NoError(err)
	s.Equal(model.SessionActive, sess.Status)
}

func (s *SchedulerSuite) TestTickEndsSessionAndSeedsFollowUp() {
	s.random.QueueString("sess-aaa", "sess-bbb")
	_, _ = s.controller.Join(s.ctx, "user-1", 1)
	_, _ = s.controller.Join(s.ctx, "user-2", 2)
	_, _ = s.controller.Join(s.ctx, "user-3", 3)

	s.clock.Advance(10 * time.Second)
	s.scheduler.Tick(s.ctx)

	s.clock.Advance(21 * time.Second)
	s.random.QueueIntn(8) // draws 9, nobody wins
	s.scheduler.Tick(s.ctx)

	ended, err := s.storage.GetSession(s.ctx, "sess-aaa")
	s.Require().NoError(err)
	s.Equal(model.SessionEnded, ended.Status)
	s.Equal(9, ended.WinningNumber)

	// The queued user seeds the follow-up session in the same tick
	created, err := s.storage.GetSession(s.ctx, "sess-bbb")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, created.Status)
	s.Equal(model.UserID("user-3"), created.CreatedBy)

	players, err := s.storage.ListPlayers(s.ctx, "sess-bbb")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(3, players[0].ChosenNumber)
}

func (s *SchedulerSuite) TestTickEndsInactiveSessionWithoutFollowUp() {
	s.random.QueueString("sess-aaa")
	_, _ = s.controller.Join(s.ctx, "user-1", 5)

	s.clock.Advance(2 * time.Minute)
	s.random.QueueIntn(0)
	s.scheduler.Tick(s.ctx)

	sess, err := s.storage.GetSession(s.ctx, "sess-aaa")
	s.Require().NoError(err)
	s.Equal(model.SessionEnded, sess.Status)

	// Nobody queued, so no session replaces it
	sessions, err := s.storage.ListNonTerminalSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *SchedulerSuite) TestStoreFailureOnOneSessionDoesNotStallOthers() {
	now := s.clock.Now()
	for _, id := range []model.SessionID{"sess-aaa", "sess-bbb"} {
		err := s.storage.SaveSession(s.ctx, &model.Session{
			ID:               id,
			CreatedBy:        "user-1",
			StartTime:        now,
			EndTime:          now.Add(30 * time.Second),
			Status:           model.SessionWaiting,
			MaxPlayers:       2,
			LastActivityTime: now,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		s.Require().NoError(err)
	}
	s.storage.setFailing("sess-aaa", true)

	s.clock.Advance(10 * time.Second)
	s.scheduler.Tick(s.ctx)

	healthy, err := s.storage.GetSession(s.ctx, "sess-bbb")
	s.Require().NoError(err)
	s.Equal(model.SessionActive, healthy.Status)

	// The failed session is retried once the store recovers
	s.storage.setFailing("sess-aaa", false)
	s.scheduler.Tick(s.ctx)

	retried, err := s.storage.GetSession(s.ctx, "sess-aaa")
	s.Require().NoError(err)
	s.Equal(model.SessionActive, retried.Status)
}
