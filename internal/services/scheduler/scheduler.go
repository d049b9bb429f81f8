package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/services/session"
)

// Config holds the scheduler timing settings
type Config struct {
	// TickPeriod is the interval between lifecycle evaluations
	TickPeriod time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{TickPeriod: time.Second}
}

// Validate checks that all configured values are usable
func (c Config) Validate() error {
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %s", c.TickPeriod)
	}
	return nil
}

// Scheduler drives time-based session transitions. On every tick it advances
// each open session and, once a session has ended, seeds a follow-up session
// from the queue so waiting users are not stranded.
type Scheduler struct {
	controller session.ControllerInterface
	cfg        Config
	logger     *slog.Logger
}

// New creates a Scheduler around the given session controller
func New(controller session.ControllerInterface, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		controller: controller,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "scheduler")),
	}
}

// Run ticks until ctx is cancelled. Ticks are processed synchronously in the
// loop, so a slow tick delays the next one rather than overlapping with it.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickPeriod)
	defer ticker.Stop()

	s.logger.Info("scheduler started", slog.Duration("tick_period", s.cfg.TickPeriod))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one evaluation pass over all open sessions. Sessions are
// advanced independently so one failing store round-trip cannot stall the
// others; a failed session is retried on the next tick.
func (s *Scheduler) Tick(ctx context.Context) {
	sessions, err := s.controller.OpenSessions(ctx)
	if err != nil {
		s.logger.Error("failed to list open sessions", slog.Any("error", err))
		return
	}
	if len(sessions) == 0 {
		return
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		anyEnded bool
	)
	for _, sess := range sessions {
		wg.Add(1)
		go func(id model.SessionID) {
			defer wg.Done()
			res, err := s.controller.AdvanceSession(ctx, id)
			if err != nil {
				s.logger.Error("failed to advance session",
					slog.String("session_id", string(id)),
					slog.Any("error", err))
				return
			}
			if res.Ended {
				s.logger.Info("session ended",
					slog.String("session_id", string(id)),
					slog.Int("winning_number", res.WinningNumber),
					slog.Int("winners", len(res.Winners)))
				mu.Lock()
				anyEnded = true
				mu.Unlock()
			}
		}(sess.ID)
	}
	wg.Wait()

	if !anyEnded {
		return
	}

	detail, err := s.controller.CreateFromQueue(ctx)
	if err != nil {
		s.logger.Error("failed to create session from queue", slog.Any("error", err))
		return
	}
	if detail != nil {
		s.logger.Info("session created from queue",
			slog.String("session_id", string(detail.ID)),
			slog.Int("players", len(detail.Players)))
	}
}
