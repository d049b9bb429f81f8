package leaderboard

import (
	"context"
	"time"

	"github.com/luckynine/backend/internal/dependencies/clock"
	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/storage"
)

// TopLimit caps how many winners a leaderboard query returns
const TopLimit = 10

// Period selects the time window for a leaderboard query
type Period string

const (
	PeriodAll   Period = "all"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period string. An empty string means all time.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodDay:
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", model.ErrInvalidPeriod
	}
}

// Service answers leaderboard queries over recorded wins
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a leaderboard Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{storage: storage, clock: clock}
}

// Top returns the all-time top winners
func (s *Service) Top(ctx context.Context) ([]model.WinnerCount, error) {
	return s.TopByPeriod(ctx, PeriodAll)
}

// TopByPeriod returns the top winners within the given period, ordered by
// win count descending
func (s *Service) TopByPeriod(ctx context.Context, period Period) ([]model.WinnerCount, error) {
	since := s.periodStart(period)
	winners, err := s.storage.TopWinners(ctx, since, TopLimit)
	if err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []model.WinnerCount{}
	}
	return winners, nil
}

// periodStart returns the inclusive lower bound of a period. Day and month
// start at their calendar boundary; the week starts on Sunday.
func (s *Service) periodStart(period Period) time.Time {
	now := s.clock.Now().UTC()
	switch period {
	case PeriodDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeek:
		return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, time.UTC)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}
