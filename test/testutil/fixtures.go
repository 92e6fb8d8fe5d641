// Package testutil provides shared fixtures for tests.
package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/events"
	"github.com/quillsafe/quillsafe/internal/models"
	"github.com/quillsafe/quillsafe/internal/vault"
)

// TestIterations keeps PBKDF2 fast in tests. Production vaults use
// crypto.DefaultIterations.
const TestIterations = 1000

// TestPassword is the fixture vault password.
const TestPassword = "Sup3rSecret!"

// NewTestLogger creates a logger for testing.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// TestPairs returns the fixture security question/answer set.
func TestPairs() []models.QAPair {
	return []models.QAPair{
		{QuestionID: "q1", Answer: "blue"},
		{QuestionID: "q2", Answer: "Paris"},
		{QuestionID: "q3", Answer: "Rex"},
	}
}

// NewTestManager creates a vault manager with fast KDF settings.
func NewTestManager() *vault.Manager {
	return vault.NewManagerWithIterations(crypto.NewProvider(), NewTestLogger(), TestIterations)
}

// NewTestVault initializes a fixture vault and fails the test on error.
func NewTestVault(t *testing.T) (*vault.Manager, *vault.InitResult) {
	t.Helper()

	mgr := NewTestManager()
	result, err := mgr.InitializeVault("test-user", TestPassword, TestPairs())
	require.NoError(t, err)
	return mgr, result
}
