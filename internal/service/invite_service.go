package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/notify"
	"github.com/jakeunsted/pub/internal/repository"
	"github.com/jakeunsted/pub/internal/validation"
	"gorm.io/gorm"
)

// InviteService manages single-use, time-bounded email invites into groups.
type InviteService struct {
	inviteRepo repository.GroupInviteRepositoryInterface
	groupRepo  repository.GroupRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	dispatcher notify.Dispatcher
}

func NewInviteService(
	inviteRepo repository.GroupInviteRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	dispatcher notify.Dispatcher,
) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
	}
}

// CreateInvite persists a 7-day invite and triggers a best-effort email. The
// token is a UUID v4, which is what the accept link carries.
func (s *InviteService) CreateInvite(groupID uint, email string, inviterID uint) (*models.GroupInvite, error) {
	email = validation.NormalizeEmail(email)
	if !validation.ValidateEmail(email) {
		return nil, errors.New("invalid email address")
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(groupID, inviterID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}

	invite := &models.GroupInvite{
		GroupID:   groupID,
		InvitedBy: inviterID,
		Email:     email,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(models.InviteWindow),
	}

	if err := s.inviteRepo.Create(invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	s.sendInviteEmail(invite, group.Name)

	return invite, nil
}

// GetInviteByToken returns a usable invite or a specific error telling the
// client whether the token is unknown, expired or already consumed.
func (s *InviteService) GetInviteByToken(token string) (*models.GroupInvite, error) {
	invite, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("load invite: %w", err)
	}

	if invite.IsAccepted() {
		return nil, ErrInviteConsumed
	}
	if invite.IsExpired(time.Now()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// InvitePreview is what the join page shows before the user commits.
type InvitePreview struct {
	GroupID     uint      `json:"group_id"`
	GroupName   string    `json:"group_name"`
	InviterName string    `json:"inviter_name"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PreviewInvite resolves a token into the details shown on the join page.
// No authentication or membership is required to preview.
func (s *InviteService) PreviewInvite(token string) (*InvitePreview, error) {
	invite, err := s.GetInviteByToken(token)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(invite.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	inviterName := "Someone"
	if inviter, err := s.userRepo.FindByID(invite.InvitedBy); err == nil && inviter.DisplayName != "" {
		inviterName = inviter.DisplayName
	}

	return &InvitePreview{
		GroupID:     invite.GroupID,
		GroupName:   group.Name,
		InviterName: inviterName,
		Email:       invite.Email,
		ExpiresAt:   invite.ExpiresAt,
	}, nil
}

// AcceptInvite joins the user to the invite's group. Accepting is idempotent
// for existing members. Success requires the membership row to exist; only
// the bookkeeping mark on the invite is allowed to fail quietly.
func (s *InviteService) AcceptInvite(token string, userID uint) (*models.Group, error) {
	invite, err := s.GetInviteByToken(token)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(invite.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(invite.GroupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	if !isMember {
		if err := s.groupRepo.AddMember(invite.GroupID, userID); err != nil {
			return nil, fmt.Errorf("add member: %w", err)
		}
	}

	if _, err := s.inviteRepo.MarkAccepted(token, userID, time.Now()); err != nil {
		// Membership already succeeded; the invite mark is bookkeeping.
		log.Printf("invite: failed to mark invite %d accepted: %v", invite.ID, err)
	}

	return group, nil
}

// ListPendingInvites returns the group's unaccepted invites, newest first.
func (s *InviteService) ListPendingInvites(groupID, viewerID uint) ([]models.GroupInvite, error) {
	isMember, err := s.groupRepo.IsMember(groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}
	return s.inviteRepo.ListPendingByGroup(groupID)
}

// CancelInvite hard-deletes a pending invite. Consumed invites are kept as a
// record of who joined via whom.
func (s *InviteService) CancelInvite(inviteID, userID uint) error {
	invite, err := s.inviteRepo.FindByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("load invite: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(invite.GroupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return ErrNotMember
	}

	deleted, err := s.inviteRepo.DeletePending(inviteID)
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	if deleted == 0 {
		return ErrInviteConsumed
	}
	return nil
}

// ResendInvite re-sends the email for a still-pending, unexpired invite.
func (s *InviteService) ResendInvite(inviteID, userID uint) error {
	invite, err := s.inviteRepo.FindByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("load invite: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(invite.GroupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return ErrNotMember
	}

	if invite.IsAccepted() {
		return ErrInviteConsumed
	}
	if invite.IsExpired(time.Now()) {
		return ErrInviteExpired
	}

	group, err := s.groupRepo.FindByID(invite.GroupID)
	if err != nil {
		return fmt.Errorf("load group: %w", err)
	}

	s.sendInviteEmail(invite, group.Name)
	return nil
}

func (s *InviteService) sendInviteEmail(invite *models.GroupInvite, groupName string) {
	if s.dispatcher == nil {
		return
	}
	inviterName := "Someone"
	if inviter, err := s.userRepo.FindByID(invite.InvitedBy); err == nil && inviter.DisplayName != "" {
		inviterName = inviter.DisplayName
	}
	s.dispatcher.InviteCreated(invite.Email, invite.Token, groupName, inviterName)
}
