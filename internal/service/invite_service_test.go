package service

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

// MockGroupInviteRepository is a mock implementation for tests.
// It implements repository.GroupInviteRepositoryInterface.
type MockGroupInviteRepository struct {
	invites map[uint]*models.GroupInvite
	nextID  uint
}

func NewMockGroupInviteRepository() *MockGroupInviteRepository {
	return &MockGroupInviteRepository{
		invites: make(map[uint]*models.GroupInvite),
		nextID:  1,
	}
}

func (m *MockGroupInviteRepository) Create(invite *models.GroupInvite) error {
	invite.ID = m.nextID
	m.nextID++
	invite.CreatedAt = time.Now()
	m.invites[invite.ID] = invite
	return nil
}

func (m *MockGroupInviteRepository) FindByToken(token string) (*models.GroupInvite, error) {
	for _, inv := range m.invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupInviteRepository) FindByID(id uint) (*models.GroupInvite, error) {
	if inv, ok := m.invites[id]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupInviteRepository) MarkAccepted(token string, userID uint, acceptedAt time.Time) (int64, error) {
	for _, inv := range m.invites {
		if inv.Token == token && inv.AcceptedAt == nil {
			inv.AcceptedAt = &acceptedAt
			inv.AcceptedBy = &userID
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockGroupInviteRepository) ListPendingByGroup(groupID uint) ([]models.GroupInvite, error) {
	var out []models.GroupInvite
	for _, inv := range m.invites {
		if inv.GroupID == groupID && inv.AcceptedAt == nil {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockGroupInviteRepository) DeletePending(id uint) (int64, error) {
	inv, ok := m.invites[id]
	if !ok || inv.AcceptedAt != nil {
		return 0, nil
	}
	delete(m.invites, id)
	return 1, nil
}

// setupInviteService wires an InviteService over mocks with one group owned
// by Alice (1); Dan (4) exists but belongs to nothing.
func setupInviteService() (*InviteService, *MockGroupRepository, *MockGroupInviteRepository) {
	groupRepo := NewMockGroupRepository()
	userRepo := NewMockUserRepository()
	inviteRepo := NewMockGroupInviteRepository()

	userRepo.Create(&models.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"})
	userRepo.Create(&models.User{ID: 4, Email: "dan@example.com", DisplayName: "Dan"})

	groupRepo.Create(&models.Group{ID: 10, Name: "The Locals", CreatedBy: 1})
	groupRepo.AddMember(10, 1)

	svc := NewInviteService(inviteRepo, groupRepo, userRepo, nil)
	return svc, groupRepo, inviteRepo
}

func TestCreateInvite(t *testing.T) {
	svc, _, _ := setupInviteService()

	invite, err := svc.CreateInvite(10, "Friend@Example.COM", 1)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if invite.Email != "friend@example.com" {
		t.Errorf("email = %q, want normalized friend@example.com", invite.Email)
	}
	if _, err := uuid.Parse(invite.Token); err != nil {
		t.Errorf("token %q is not a UUID: %v", invite.Token, err)
	}
	window := time.Until(invite.ExpiresAt)
	if window < models.InviteWindow-time.Minute || window > models.InviteWindow {
		t.Errorf("expiry window = %v, want about %v", window, models.InviteWindow)
	}
}

func TestCreateInvite_Errors(t *testing.T) {
	svc, _, _ := setupInviteService()

	tests := []struct {
		name      string
		groupID   uint
		email     string
		inviterID uint
		wantErr   error
	}{
		{"Unknown group", 99, "friend@example.com", 1, ErrGroupNotFound},
		{"Inviter not a member", 10, "friend@example.com", 4, ErrNotMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateInvite(tt.groupID, tt.email, tt.inviterID); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.CreateInvite(10, "not-an-email", 1); err == nil {
		t.Errorf("expected error for invalid email")
	}
}

func TestAcceptInvite(t *testing.T) {
	svc, groupRepo, _ := setupInviteService()

	invite, _ := svc.CreateInvite(10, "dan@example.com", 1)

	group, err := svc.AcceptInvite(invite.Token, 4)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if group.ID != 10 {
		t.Errorf("group = %d, want 10", group.ID)
	}

	isMember, _ := groupRepo.IsMember(10, 4)
	if !isMember {
		t.Fatalf("user 4 not a member after accepting")
	}

	// The token is single-use.
	if _, err := svc.AcceptInvite(invite.Token, 4); !errors.Is(err, ErrInviteConsumed) {
		t.Errorf("second accept err = %v, want ErrInviteConsumed", err)
	}
}

func TestAcceptInvite_IdempotentForMembers(t *testing.T) {
	svc, groupRepo, _ := setupInviteService()

	invite, _ := svc.CreateInvite(10, "alice@example.com", 1)

	// Alice is already in; accepting must succeed without a second membership.
	if _, err := svc.AcceptInvite(invite.Token, 1); err != nil {
		t.Fatalf("AcceptInvite for existing member: %v", err)
	}
	memberIDs, _ := groupRepo.GetMemberIDs(10)
	if len(memberIDs) != 1 {
		t.Errorf("members = %v, want just Alice", memberIDs)
	}
}

func TestAcceptInvite_TokenErrors(t *testing.T) {
	svc, _, inviteRepo := setupInviteService()

	expired, _ := svc.CreateInvite(10, "late@example.com", 1)
	inviteRepo.invites[expired.ID].ExpiresAt = time.Now().Add(-time.Hour)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"Unknown token", uuid.NewString(), ErrInviteNotFound},
		{"Expired token", expired.Token, ErrInviteExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AcceptInvite(tt.token, 4); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListPendingInvites(t *testing.T) {
	svc, _, _ := setupInviteService()

	first, _ := svc.CreateInvite(10, "one@example.com", 1)
	svc.CreateInvite(10, "two@example.com", 1)

	invites, err := svc.ListPendingInvites(10, 1)
	if err != nil {
		t.Fatalf("ListPendingInvites: %v", err)
	}
	if len(invites) != 2 {
		t.Fatalf("pending = %d, want 2", len(invites))
	}

	// Accepting one removes it from the pending list.
	if _, err := svc.AcceptInvite(first.Token, 4); err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	invites, _ = svc.ListPendingInvites(10, 1)
	if len(invites) != 1 || invites[0].Email != "two@example.com" {
		t.Errorf("pending after accept = %+v, want just two@example.com", invites)
	}

	if _, err := svc.ListPendingInvites(10, 4); err != nil {
		t.Errorf("new member cannot list invites: %v", err)
	}
}

func TestCancelInvite(t *testing.T) {
	svc, _, _ := setupInviteService()

	invite, _ := svc.CreateInvite(10, "cancelme@example.com", 1)

	if err := svc.CancelInvite(invite.ID, 4); !errors.Is(err, ErrNotMember) {
		t.Fatalf("non-member cancel err = %v, want ErrNotMember", err)
	}

	if err := svc.CancelInvite(invite.ID, 1); err != nil {
		t.Fatalf("CancelInvite: %v", err)
	}
	if err := svc.CancelInvite(invite.ID, 1); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("second cancel err = %v, want ErrInviteNotFound", err)
	}

	// Consumed invites stay on record and cannot be cancelled.
	accepted, _ := svc.CreateInvite(10, "dan@example.com", 1)
	if _, err := svc.AcceptInvite(accepted.Token, 4); err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if err := svc.CancelInvite(accepted.ID, 1); !errors.Is(err, ErrInviteConsumed) {
		t.Errorf("cancel consumed err = %v, want ErrInviteConsumed", err)
	}
}

func TestResendInvite(t *testing.T) {
	svc, _, inviteRepo := setupInviteService()

	invite, _ := svc.CreateInvite(10, "again@example.com", 1)

	if err := svc.ResendInvite(invite.ID, 1); err != nil {
		t.Fatalf("ResendInvite: %v", err)
	}
	if err := svc.ResendInvite(invite.ID, 4); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member resend err = %v, want ErrNotMember", err)
	}

	inviteRepo.invites[invite.ID].ExpiresAt = time.Now().Add(-time.Hour)
	if err := svc.ResendInvite(invite.ID, 1); !errors.Is(err, ErrInviteExpired) {
		t.Errorf("expired resend err = %v, want ErrInviteExpired", err)
	}
}

func TestPreviewInvite(t *testing.T) {
	svc, _, _ := setupInviteService()

	invite, _ := svc.CreateInvite(10, "preview@example.com", 1)

	preview, err := svc.PreviewInvite(invite.Token)
	if err != nil {
		t.Fatalf("PreviewInvite: %v", err)
	}
	if preview.GroupName != "The Locals" {
		t.Errorf("group name = %q, want The Locals", preview.GroupName)
	}
	if preview.InviterName != "Alice" {
		t.Errorf("inviter name = %q, want Alice", preview.InviterName)
	}
}
