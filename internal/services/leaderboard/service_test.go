package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/luckynine/backend/internal/dependencies/mocks"
	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	// A Wednesday mid-month
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock)
	s.ctx = context.Background()
}

func (s *ServiceSuite) recordWin(userID string, at time.Time) {
	err := s.storage.RecordWin(s.ctx, &model.WinRecord{
		UserID:    model.UserID(userID),
		CreatedAt: at,
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) addUser(id string, name string) {
	err := s.storage.SaveUser(s.ctx, &model.User{
		ID:          model.UserID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestParsePeriod() {
	for raw, want := range map[string]Period{
		"":      PeriodAll,
		"all":   PeriodAll,
		"day":   PeriodDay,
		"week":  PeriodWeek,
		"month": PeriodMonth,
	} {
		got, err := ParsePeriod(raw)
		s.NoError(err)
		s.Equal(want, got)
	}

	_, err := ParsePeriod("year")
	s.ErrorIs(err, model.ErrInvalidPeriod)
}

func (s *ServiceSuite) TestTopWithNoWinsIsEmpty() {
	winners, err := s.service.Top(s.ctx)
	s.Require().NoError(err)
	s.NotNil(winners)
	s.Empty(winners)
}

func (s *ServiceSuite) TestTopCountsAndOrders() {
	s.addUser("user-1", "Alice")
	s.addUser("user-2", "Bob")
	now := s.clock.Now()
	s.recordWin("user-1", now.Add(-48*time.Hour))
	s.recordWin("user-2", now.Add(-24*time.Hour))
	s.recordWin("user-2", now.Add(-time.Hour))

	winners, err := s.service.Top(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(winners, 2)
	s.Equal(model.UserID("user-2"), winners[0].UserID)
	s.Equal("Bob", winners[0].DisplayName)
	s.Equal(2, winners[0].TotalWins)
	s.Equal(1, winners[1].TotalWins)
}

func (s *ServiceSuite) TestTopByDayStartsAtMidnight() {
	s.recordWin("user-1", time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC))
	s.recordWin("user-2", time.Date(2024, 1, 16, 23, 59, 59, 0, time.UTC))

	winners, err := s.service.TopByPeriod(s.ctx, PeriodDay)
	s.Require().NoError(err)

	s.Require().Len(winners, 1)
	s.Equal(model.UserID("user-1"), winners[0].UserID)
}

func (s *ServiceSuite) TestTopByWeekStartsOnSunday() {
	// 2024-01-17 is a Wednesday; the week began Sunday 2024-01-14
	s.recordWin("user-1", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
	s.recordWin("user-2", time.Date(2024, 1, 13, 23, 0, 0, 0, time.UTC))

	winners, err := s.service.TopByPeriod(s.ctx, PeriodWeek)
	s.Require().NoError(err)

	s.Require().Len(winners, 1)
	s.Equal(model.UserID("user-1"), winners[0].UserID)
}

func (s *ServiceSuite) TestTopByMonthStartsOnFirst() {
	s.recordWin("user-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.recordWin("user-2", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))

	winners, err := s.service.TopByPeriod(s.ctx, PeriodMonth)
	s.Require().NoError(err)

	s.Require().Len(winners, 1)
	s.Equal(model.UserID("user-1"), winners[0].UserID)
}

func (s *ServiceSuite) TestTopIsCappedAtTen() {
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("user-%02d", i)
		for j := 0; j <= i; j++ {
			s.recordWin(id, s.clock.Now())
		}
	}

	winners, err := s.service.Top(s.ctx)
	s.Require().NoError(err)
	s.Len(winners, TopLimit)
	s.Equal(15, winners[0].TotalWins)
}
