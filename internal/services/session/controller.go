package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/luckynine/backend/internal/dependencies/clock"
	"github.com/luckynine/backend/internal/dependencies/random"
	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/storage"
)

const (
	// SessionIDLength is the length of generated session ids
	SessionIDLength = 12
	// SessionIDAlphabet is the characters used in session ids
	SessionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Emitter receives lifecycle events from the controller. Emission is
// fire-and-forget: implementations must not block, and delivery failures
// never roll back a committed transition.
type Emitter interface {
	Emit(event model.Event)
}

// NopEmitter discards all events
type NopEmitter struct{}

// Emit implements Emitter
func (NopEmitter) Emit(model.Event) {}

// JoinResult is the outcome of a join request
type JoinResult struct {
	Session *model.SessionDetail
	Message string
}

// Controller owns session admission, membership and time-driven transitions.
//
// Two execution contexts mutate sessions concurrently: user join/leave
// requests and the scheduler's tick. All mutations of a given session are
// serialized on a per-session mutex; admission, creation and queue positions
// additionally serialize on admitMu, the single-writer authority for the
// "at most one non-terminal session" invariant. Lock ordering is always
// admitMu before a session lock, never the reverse.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	emitter Emitter
	cfg     Config
	logger  *slog.Logger

	admitMu sync.Mutex

	locksMu sync.Mutex
	locks   map[model.SessionID]*sync.Mutex
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	emitter Emitter,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "session-controller")),
		locks:   make(map[model.SessionID]*sync.Mutex),
	}
}

// Config returns the controller's session configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// sessionLock returns the mutex serializing all mutations of one session
func (c *Controller) sessionLock(id model.SessionID) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	mu, ok := c.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[id] = mu
	}
	return mu
}

// findOpenSession returns the single WAITING/ACTIVE session, or nil if none.
// Finding more than one is a concurrency fault and fails loudly.
func (c *Controller) findOpenSession(ctx context.Context) (*model.Session, error) {
	sessions, err := c.storage.ListNonTerminalSessions(ctx)
	if err != nil {
		return nil, err
	}
	switch len(sessions) {
	case 0:
		return nil, nil
	case 1:
		return sessions[0], nil
	default:
		c.logger.Error("single open session invariant broken",
			slog.Int("count", len(sessions)))
		return nil, model.ErrMultipleOpenSessions
	}
}

func (c *Controller) loadDetail(ctx context.Context, sess *model.Session) (*model.SessionDetail, error) {
	players, err := c.storage.ListPlayers(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	queue, err := c.storage.ListQueue(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &model.SessionDetail{Session: sess, Players: players, Queue: queue}, nil
}

// Join admits a user into the current session, creating one if none exists.
// Duplicate joins are absorbed as no-ops and a full session routes the user
// to the queue; neither is an error.
// nextQueuePosition returns one past the highest position still queued.
// Queue length is not enough: after a head promotion the tail's position
// would be reissued, and positions must stay unique and increasing.
func nextQueuePosition(queue []*model.QueueEntry) int {
	highest := 0
	for _, q := range queue {
		if q.Position > highest {
			highest = q.Position
		}
	}
	return highest + 1
}

func (c *Controller) Join(ctx context.Context, userID model.UserID, chosenNumber int) (*JoinResult, error) {
	if chosenNumber < 1 || chosenNumber > 9 {
		return nil, model.ErrInvalidChosenNumber
	}

	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	sess, err := c.findOpenSession(ctx)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		detail, err := c.createSession(ctx, userID, chosenNumber)
		if err != nil {
			return nil, err
		}
		return &JoinResult{Session: detail, Message: "New session created and joined"}, nil
	}

	mu := c.sessionLock(sess.ID)
	mu.Lock()
	defer mu.Unlock()

	detail, err := c.loadDetail(ctx, sess)
	if err != nil {
		return nil, err
	}

	if detail.HasPlayer(userID) {
		return &JoinResult{Session: detail, Message: "User already joined as player"}, nil
	}
	if detail.InQueue(userID) {
		return &JoinResult{Session: detail, Message: "User already in queue"}, nil
	}

	now := c.clock.Now()

	if len(detail.Players) >= sess.MaxPlayers {
		entry := &model.QueueEntry{
			SessionID:    sess.ID,
			UserID:       userID,
			ChosenNumber: chosenNumber,
			Position:     nextQueuePosition(detail.Queue),
			EnqueuedAt:   now,
		}
		if err := c.storage.AddQueueEntry(ctx, entry); err != nil {
			return nil, err
		}
		detail.Queue = append(detail.Queue, entry)
		return &JoinResult{
			Session: detail,
			Message: fmt.Sprintf("Session full, added to queue at position %d", entry.Position),
		}, nil
	}

	player := &model.Player{
		SessionID:    sess.ID,
		UserID:       userID,
		ChosenNumber: chosenNumber,
		JoinedAt:     now,
	}
	if err := c.storage.AddPlayer(ctx, player); err != nil {
		return nil, err
	}

	sess.LastActivityTime = now
	sess.UpdatedAt = now
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	detail.Players = append(detail.Players, player)

	c.emitter.Emit(model.Event{
		Type:      model.EventPlayerJoined,
		Timestamp: now,
		SessionID: sess.ID,
		Payload:   model.PlayerJoinedPayload{UserID: userID},
	})

	return &JoinResult{Session: detail, Message: "User successfully joined session"}, nil
}

// createSession creates a WAITING session seeded with the given user, then
// drains the global queue FIFO into the remaining slots. Callers must hold
// admitMu. A zero chosenNumber means the seeding user gets a random draw.
func (c *Controller) createSession(ctx context.Context, userID model.UserID, chosenNumber int) (*model.SessionDetail, error) {
	now := c.clock.Now()

	sess := &model.Session{
		ID:        model.SessionID(c.random.String(SessionIDLength, SessionIDAlphabet)),
		CreatedBy: userID,
		StartTime: now,
		// Placeholder deadline; the WAITING -> ACTIVE transition overwrites it
		EndTime:          now.Add(c.cfg.WaitingDuration + c.cfg.ActiveDuration),
		Status:           model.SessionWaiting,
		MaxPlayers:       c.cfg.MaxPlayers,
		LastActivityTime: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	if chosenNumber == 0 {
		chosenNumber = DrawNumber(c.random)
	}
	creator := &model.Player{
		SessionID:    sess.ID,
		UserID:       userID,
		ChosenNumber: chosenNumber,
		JoinedAt:     now,
	}
	if err := c.storage.AddPlayer(ctx, creator); err != nil {
		return nil, err
	}
	players := []*model.Player{creator}

	// Drain queued users FIFO so users queued during a previous session's
	// lifetime join this one without re-requesting
	queued, err := c.storage.ListAllQueued(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range queued {
		if len(players) >= sess.MaxPlayers {
			break
		}
		if q.UserID == userID {
			// The seeding user's own entry is consumed by creation
			c.discardQueueEntry(ctx, q)
			continue
		}
		promoted := &model.Player{
			SessionID:    sess.ID,
			UserID:       q.UserID,
			ChosenNumber: q.ChosenNumber,
			JoinedAt:     now,
		}
		if err := c.storage.AddPlayer(ctx, promoted); err != nil {
			return nil, err
		}
		c.discardQueueEntry(ctx, q)
		players = append(players, promoted)

		c.emitter.Emit(model.Event{
			Type:      model.EventPlayerPromoted,
			Timestamp: now,
			SessionID: sess.ID,
			Payload:   model.PlayerPromotedPayload{UserID: q.UserID},
		})
	}

	queue, err := c.storage.ListQueue(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &model.SessionDetail{Session: sess, Players: players, Queue: queue}, nil
}

func (c *Controller) discardQueueEntry(ctx context.Context, q *model.QueueEntry) {
	if err := c.storage.RemoveQueueEntry(ctx, q.SessionID, q.UserID); err != nil {
		c.logger.Warn("failed to remove drained queue entry",
			slog.String("session_id", string(q.SessionID)),
			slog.String("user_id", string(q.UserID)),
			slog.Any("error", err))
	}
}

// Leave removes a user from a session and promotes the queue head into the
// freed seat. Leave is idempotent: redundant or unknown-session leaves are
// no-ops returning the current snapshot, not errors.
func (c *Controller) Leave(ctx context.Context, userID model.UserID, sessionID model.SessionID) (*model.SessionDetail, error) {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			c.logger.Debug("leave for unknown session",
				slog.String("session_id", string(sessionID)),
				slog.String("user_id", string(userID)))
			return nil, nil
		}
		return nil, err
	}

	detail, err := c.loadDetail(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Membership is frozen once the session has ended
	if sess.IsTerminal() || !detail.HasPlayer(userID) {
		return detail, nil
	}

	now := c.clock.Now()

	if err := c.storage.RemovePlayer(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	sess.LastActivityTime = now
	sess.UpdatedAt = now
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	c.emitter.Emit(model.Event{
		Type:      model.EventPlayerLeft,
		Timestamp: now,
		SessionID: sessionID,
		Payload:   model.PlayerLeftPayload{UserID: userID},
	})

	// The freed seat goes to the queue head (smallest position)
	if len(detail.Queue) > 0 {
		head := detail.Queue[0]
		promoted := &model.Player{
			SessionID:    sessionID,
			UserID:       head.UserID,
			ChosenNumber: head.ChosenNumber,
			JoinedAt:     now,
		}
		if err := c.storage.AddPlayer(ctx, promoted); err != nil {
			return nil, err
		}
		c.discardQueueEntry(ctx, head)

		c.emitter.Emit(model.Event{
			Type:      model.EventPlayerPromoted,
			Timestamp: now,
			SessionID: sessionID,
			Payload:   model.PlayerPromotedPayload{UserID: head.UserID},
		})
	}

	return c.loadDetail(ctx, sess)
}

// AdvanceSession applies the time-driven transition checks to one session.
// A store failure leaves the stored status unchanged so the transition is
// retried on the next tick.
func (c *Controller) AdvanceSession(ctx context.Context, id model.SessionID) (Result, error) {
	mu := c.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if sess.IsTerminal() {
		return Result{}, nil
	}

	players, err := c.storage.ListPlayers(ctx, id)
	if err != nil {
		return Result{}, err
	}

	res := Advance(sess, players, c.clock.Now(), c.cfg, c.random)
	if !res.Changed() {
		return res, nil
	}

	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return Result{}, err
	}

	if res.Ended {
		for _, w := range res.Winners {
			win := &model.WinRecord{UserID: w.UserID, CreatedAt: sess.UpdatedAt}
			if err := c.storage.RecordWin(ctx, win); err != nil {
				// Non-fatal: the session still ends and the other
				// winners are still recorded
				c.logger.Error("failed to record win",
					slog.String("session_id", string(sess.ID)),
					slog.String("user_id", string(w.UserID)),
					slog.Any("error", err))
			}
		}
	}

	for _, ev := range res.Events {
		c.emitter.Emit(ev)
	}

	return res, nil
}

// CreateFromQueue creates a new session seeded from the global queue head,
// if any users are queued and no session is currently open. Called by the
// scheduler after ending a session so availability has no gap.
func (c *Controller) CreateFromQueue(ctx context.Context) (*model.SessionDetail, error) {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	count, err := c.storage.CountQueued(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	open, err := c.findOpenSession(ctx)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, nil
	}

	queued, err := c.storage.ListAllQueued(ctx)
	if err != nil {
		return nil, err
	}
	if len(queued) == 0 {
		return nil, nil
	}

	head := queued[0]
	return c.createSession(ctx, head.UserID, head.ChosenNumber)
}

// OpenSessions returns all sessions not yet ENDED
func (c *Controller) OpenSessions(ctx context.Context) ([]*model.Session, error) {
	return c.storage.ListNonTerminalSessions(ctx)
}

// ListActive returns the current WAITING/ACTIVE sessions with membership
func (c *Controller) ListActive(ctx context.Context) ([]*model.SessionDetail, error) {
	sessions, err := c.storage.ListNonTerminalSessions(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]*model.SessionDetail, 0, len(sessions))
	for _, sess := range sessions {
		detail, err := c.loadDetail(ctx, sess)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// GetSessionDetail returns one session with its membership and queue
func (c *Controller) GetSessionDetail(ctx context.Context, id model.SessionID) (*model.SessionDetail, error) {
	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.loadDetail(ctx, sess)
}

// SessionsByDate groups every session by the calendar date (UTC) it started
func (c *Controller) SessionsByDate(ctx context.Context) (map[string][]*model.Session, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*model.Session)
	for _, sess := range sessions {
		date := sess.StartTime.UTC().Format("2006-01-02")
		grouped[date] = append(grouped[date], sess)
	}
	return grouped, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	Join(ctx context.Context, userID model.UserID, chosenNumber int) (*JoinResult, error)
	Leave(ctx context.Context, userID model.UserID, sessionID model.SessionID) (*model.SessionDetail, error)
	AdvanceSession(ctx context.Context, id model.SessionID) (Result, error)
	CreateFromQueue(ctx context.Context) (*model.SessionDetail, error)
	OpenSessions(ctx context.Context) ([]*model.Session, error)
	ListActive(ctx context.Context) ([]*model.SessionDetail, error)
	GetSessionDetail(ctx context.Context, id model.SessionID) (*model.SessionDetail, error)
	SessionsByDate(ctx context.Context) (map[string][]*model.Session, error)
}

var _ ControllerInterface = (*Controller)(nil)
