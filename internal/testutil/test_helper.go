package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/jakeunsted/pub/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, email, displayName string) *models.User {
	if id == 0 {
		id = 1
	}
	if email == "" {
		email = "test@example.com"
	}
	if displayName == "" {
		displayName = "Test User"
	}

	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hashed_password_123",
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// CreateTestGroup creates a test group with default values
func (h *TestHelper) CreateTestGroup(id uint, name string, createdBy uint) *models.Group {
	if id == 0 {
		id = 1
	}
	if name == "" {
		name = "The Locals"
	}
	if createdBy == 0 {
		createdBy = 1
	}

	return &models.Group{
		ID:        id,
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("PASSWORD_MIN_LENGTH", "10")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}
