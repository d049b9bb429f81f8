package factory

import (
	"time"

	"github.com/luckynine/backend/internal/dependencies/mocks"
	"github.com/luckynine/backend/internal/services/auth"
	"github.com/luckynine/backend/internal/services/scheduler"
	"github.com/luckynine/backend/internal/services/session"
	"github.com/luckynine/backend/internal/storage/memory"
	"github.com/luckynine/backend/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(session.DefaultConfig())
}

// NewTestAppWithConfig creates a test App with custom session settings
func NewTestAppWithConfig(sessionCfg session.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store, mockClock, mockRandom,
		sessionCfg, scheduler.DefaultConfig(), auth.DefaultConfig(),
		testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
