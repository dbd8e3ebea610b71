package service

import (
	"errors"
	"testing"
	"time"

	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockRefreshTokenRepository is a mock implementation for tests.
// It implements repository.RefreshTokenRepositoryInterface.
type MockRefreshTokenRepository struct {
	tokens map[string]*models.RefreshToken
}

func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *MockRefreshTokenRepository) FindValidByHash(hash string) (*models.RefreshToken, error) {
	token, ok := m.tokens[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if time.Now().After(token.ExpiresAt) || token.RevokedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (m *MockRefreshTokenRepository) RevokeByHash(hash string) error {
	if token, ok := m.tokens[hash]; ok {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func setupAuthService(t *testing.T) (*AuthService, *MockUserRepository, *MockRefreshTokenRepository) {
	helper := testutil.NewTestHelper(t)
	helper.SetupTestEnv()
	t.Cleanup(helper.TeardownTestEnv)
	userRepo := NewMockUserRepository()
	refreshRepo := NewMockRefreshTokenRepository()
	return NewAuthService(userRepo, refreshRepo), userRepo, refreshRepo
}

func TestRegister(t *testing.T) {
	authService, userRepo, _ := setupAuthService(t)

	// Pre-populate a duplicate.
	userRepo.Create(&models.User{Email: "taken@example.com"})

	tests := []struct {
		name      string
		input     RegisterInput
		shouldErr bool
	}{
		{
			name: "Valid registration",
			input: RegisterInput{
				Email:       "john@example.com",
				Password:    "securepassword123",
				DisplayName: "John",
			},
			shouldErr: false,
		},
		{
			name: "Duplicate email",
			input: RegisterInput{
				Email:    "taken@example.com",
				Password: "securepassword123",
			},
			shouldErr: true,
		},
		{
			name: "Invalid email",
			input: RegisterInput{
				Email:    "not-an-email",
				Password: "securepassword123",
			},
			shouldErr: true,
		},
		{
			name: "Short password",
			input: RegisterInput{
				Email:    "short@example.com",
				Password: "short",
			},
			shouldErr: true,
		},
		{
			name: "Email case folded",
			input: RegisterInput{
				Email:       "John.Smith@Example.COM",
				Password:    "securepassword123",
				DisplayName: "John Smith",
			},
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Register(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Fatalf("Register error = %v, wantErr %v", err, tt.shouldErr)
			}
			if tt.shouldErr {
				return
			}
			if result.AccessToken == "" {
				t.Errorf("Register returned empty access token")
			}
			if result.RefreshToken == "" {
				t.Errorf("Register returned empty refresh token")
			}
		})
	}

	if _, err := userRepo.FindByEmail("john.smith@example.com"); err != nil {
		t.Errorf("normalized email not stored: %v", err)
	}
}

func TestLogin(t *testing.T) {
	authService, userRepo, _ := setupAuthService(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("securepassword123"), bcrypt.DefaultCost)
	userRepo.Create(&models.User{
		ID:           1,
		Email:        "john@example.com",
		PasswordHash: string(hashed),
	})

	tests := []struct {
		name      string
		input     LoginInput
		shouldErr bool
	}{
		{"Valid login", LoginInput{Email: "john@example.com", Password: "securepassword123"}, false},
		{"Case-insensitive email", LoginInput{Email: "John@Example.com", Password: "securepassword123"}, false},
		{"Wrong password", LoginInput{Email: "john@example.com", Password: "wrongpassword12"}, true},
		{"Unknown email", LoginInput{Email: "nobody@example.com", Password: "securepassword123"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(tt.input)
			if (err != nil) != tt.shouldErr {
				t.Fatalf("Login error = %v, wantErr %v", err, tt.shouldErr)
			}
			if tt.shouldErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if result.User.ID != 1 {
				t.Errorf("user ID = %d, want 1", result.User.ID)
			}
		})
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	authService, _, _ := setupAuthService(t)

	initial, err := authService.Register(RegisterInput{
		Email:    "rotate@example.com",
		Password: "securepassword123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rotated, err := authService.Refresh(initial.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == initial.RefreshToken {
		t.Errorf("refresh token not rotated")
	}

	// The old token is single-use.
	if _, err := authService.Refresh(initial.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("reused token err = %v, want ErrInvalidCredentials", err)
	}

	// The new one still works.
	if _, err := authService.Refresh(rotated.RefreshToken); err != nil {
		t.Errorf("rotated token rejected: %v", err)
	}
}

func TestLogout(t *testing.T) {
	authService, _, _ := setupAuthService(t)

	result, err := authService.Register(RegisterInput{
		Email:    "logout@example.com",
		Password: "securepassword123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := authService.Logout(result.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := authService.Refresh(result.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("token usable after logout: %v", err)
	}

	// Logout with no cookie is a no-op.
	if err := authService.Logout(""); err != nil {
		t.Errorf("empty logout err = %v", err)
	}
}
