package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/rpgroster-go/internal/dependencies/mocks"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
	"github.com/mcoot/rpgroster-go/internal/storage/memory"
	"github.com/mcoot/rpgroster-go/internal/testutil"
)

// TestSecret signs tokens issued by a TestApp
var TestSecret = []byte("test-secret")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	leaderboard := memory.NewLeaderboard()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret
	authCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, leaderboard, mockClock, mockIDs, authCfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
