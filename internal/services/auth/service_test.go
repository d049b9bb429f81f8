package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/luckynine/backend/internal/dependencies/mocks"
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
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

// CreateGuestUser tests

func (s *ServiceSuite) TestCreateGuestUserSucceeds() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.User.DisplayName)
	s.True(session.User.IsGuest)
	s.NotEmpty(session.UserID)
}

func (s *ServiceSuite) TestCreateGuestUserPersistsUser() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	user, err := s.storage.GetUser(s.ctx, session.UserID)
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestUserTokenIsValid() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	validated, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, validated.UserID)
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	session, err := s.service.Register(s.ctx, "alice", "password123", "Alice")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.User.DisplayName)
	s.False(session.User.IsGuest)
}

func (s *ServiceSuite) TestRegisterPersistsRegistration() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice")

	ru, err := s.storage.GetRegisteredUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", ru.Username)
	s.NotEmpty(ru.PasswordHash)
	s.NotEqual("password123", ru.PasswordHash) // Should be hashed
}

func (s *ServiceSuite) TestRegisterFailsIfUsernameExists() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.Register(s.ctx, "alice", "different", "Alice2")
	s.ErrorIs(err, ErrUsernameExists)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice")

	session, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.User.DisplayName)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "password123", "Alice")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// ValidateToken tests

func (s *ServiceSuite) TestValidateTokenSucceeds() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	validated, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Token, validated.Token)
}

func (s *ServiceSuite) TestValidateTokenFailsWithInvalidToken() {
	_, err := s.service.ValidateToken("invalid_token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenFailsWhenExpired() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	// Advance time past expiration
	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

// InvalidateToken tests

func (s *ServiceSuite) TestInvalidateTokenRemovesSession() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	s.service.InvalidateToken(session.Token)

	_, err := s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestInvalidateTokenNoopForUnknownToken() {
	// Should not panic
	s.service.InvalidateToken("unknown_token")
}

// GetUser tests

func (s *ServiceSuite) TestGetUserSucceeds() {
	session, _ := s.service.CreateGuestUser(s.ctx, "Alice")

	user, err := s.service.GetUser(session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
}

func (s *ServiceSuite) TestGetUserFailsWithInvalidToken() {
	_, err := s.service.GetUser("invalid_token")
	s.ErrorIs(err, ErrInvalidToken)
}

// CleanExpiredSessions tests

func (s *ServiceSuite) TestCleanExpiredSessionsRemovesOnlyExpired() {
	expired, _ := s.service.CreateGuestUser(s.ctx, "Old")
	s.clock.Advance(25 * time.Hour)
	fresh, _ := s.service.CreateGuestUser(s.ctx, "New")

	s.service.CleanExpiredSessions()

	_, err := s.service.ValidateToken(expired.Token)
	s.ErrorIs(err, ErrInvalidToken)
	_, err = s.service.ValidateToken(fresh.Token)
	s.NoError(err)
}
