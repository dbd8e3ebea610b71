package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jakeunsted/pub/internal/cache"
	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/notify"
	"github.com/jakeunsted/pub/internal/repository"
	"gorm.io/gorm"
)

// PubService owns the pub-request lifecycle: creating time-bounded requests,
// recording accept/deny responses, deriving the agreed member set and the
// per-user pending count. All serialization comes from the store; the service
// holds no locks of its own.
type PubService struct {
	requestRepo  repository.PubRequestRepositoryInterface
	responseRepo repository.PubResponseRepositoryInterface
	groupRepo    repository.GroupRepositoryInterface
	userRepo     repository.UserRepositoryInterface
	dispatcher   notify.Dispatcher
	pubCache     *cache.PubCache
}

func NewPubService(
	requestRepo repository.PubRequestRepositoryInterface,
	responseRepo repository.PubResponseRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	dispatcher notify.Dispatcher,
	pubCache *cache.PubCache,
) *PubService {
	return &PubService{
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		dispatcher:   dispatcher,
		pubCache:     pubCache,
	}
}

// MemberView is a user resolved to their display name for client rendering.
type MemberView struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// SessionView is the derived, per-viewer state of one pub request. It is
// recomputed from the store on every read and never persisted.
type SessionView struct {
	ID             uint                  `json:"id"`
	GroupID        uint                  `json:"group_id"`
	RequestedBy    uint                  `json:"requested_by"`
	RequesterName  string                `json:"requester_name"`
	CreatedAt      time.Time             `json:"created_at"`
	ExpiresAt      time.Time             `json:"expires_at"`
	TimeRemaining  string                `json:"time_remaining"`
	AgreedMembers  []MemberView          `json:"agreed_members"`
	ViewerResponse models.ResponseStatus `json:"viewer_response"`
}

// CreateRequest opens a 12-hour "pub?" round for the group. The requester
// must be a member, and only one request may be active per group at a time.
// Notification dispatch is fire-and-forget and never affects the result.
func (s *PubService) CreateRequest(groupID, requesterID uint) (*models.PubRequest, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(groupID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}

	now := time.Now()
	req := &models.PubRequest{
		GroupID:     groupID,
		RequestedBy: requesterID,
		ExpiresAt:   now.Add(models.RequestWindow),
	}

	if err := s.requestRepo.CreateExclusive(req); err != nil {
		if errors.Is(err, repository.ErrActiveRequestExists) {
			return nil, ErrDuplicateActiveRequest
		}
		return nil, fmt.Errorf("create pub request: %w", err)
	}

	if s.dispatcher != nil {
		requesterName := s.displayName(requesterID)
		s.dispatcher.PubRequestCreated(req.ID, groupID, requesterID, group.Name, requesterName)
	}

	s.invalidateGroupPendingCounts(groupID)

	return req, nil
}

// Respond upserts the member's answer. The requester is implicitly accepted
// and cannot respond; answers after expiry are rejected. A member may change
// their answer any number of times while the request is active.
func (s *PubService) Respond(requestID, userID uint, accepted bool) error {
	req, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load pub request: %w", err)
	}

	if req.RequestedBy == userID {
		return ErrOwnRequest
	}
	if !req.IsActive(time.Now()) {
		return ErrRequestExpired
	}

	isMember, err := s.groupRepo.IsMember(req.GroupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return ErrNotMember
	}

	if err := s.responseRepo.Upsert(requestID, userID, accepted, time.Now()); err != nil {
		return fmt.Errorf("record response: %w", err)
	}

	if err := s.pubCache.InvalidatePendingCounts(userID); err != nil {
		// Cache staleness self-heals via TTL.
		log.Printf("pub: pending count invalidation for user %d failed: %v", userID, err)
	}

	return nil
}

// GetSessionView resolves one request for a viewer: requester, agreed member
// set (requester plus everyone who accepted) and the viewer's own status.
func (s *PubService) GetSessionView(requestID, viewerID uint) (*SessionView, error) {
	req, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load pub request: %w", err)
	}

	isMember, err := s.groupRepo.IsMember(req.GroupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}

	return s.buildSessionView(req, viewerID)
}

// ListActiveSessions returns the group's open requests as session views,
// newest first.
func (s *PubService) ListActiveSessions(groupID, viewerID uint) ([]SessionView, error) {
	isMember, err := s.groupRepo.IsMember(groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}

	requests, err := s.requestRepo.FindActiveByGroup(groupID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list active requests: %w", err)
	}

	views := make([]SessionView, 0, len(requests))
	for i := range requests {
		view, err := s.buildSessionView(&requests[i], viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// PendingCount counts active requests across the user's groups still awaiting
// their answer. Served from cache when fresh; recomputed from the store
// otherwise.
func (s *PubService) PendingCount(userID uint) (int, error) {
	if count, ok := s.pubCache.GetPendingCount(userID); ok {
		return count, nil
	}

	count, err := s.requestRepo.CountPendingForUser(userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}

	if err := s.pubCache.SetPendingCount(userID, count); err != nil {
		log.Printf("pub: pending count cache set for user %d failed: %v", userID, err)
	}
	return count, nil
}

func (s *PubService) buildSessionView(req *models.PubRequest, viewerID uint) (*SessionView, error) {
	responses, err := s.responseRepo.FindByRequest(req.ID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	viewerResponse := models.ResponsePending
	agreedIDs := []uint{req.RequestedBy}
	for _, resp := range responses {
		if resp.Accepted {
			agreedIDs = append(agreedIDs, resp.UserID)
		}
		if resp.UserID == viewerID {
			if resp.Accepted {
				viewerResponse = models.ResponseAccepted
			} else {
				viewerResponse = models.ResponseDenied
			}
		}
	}
	if req.RequestedBy == viewerID {
		viewerResponse = models.ResponseAccepted
	}

	// Single IN query for all names; never one lookup per member.
	users, err := s.userRepo.FindByIDs(agreedIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	agreed := make([]MemberView, 0, len(agreedIDs))
	for _, id := range agreedIDs {
		agreed = append(agreed, MemberView{UserID: id, DisplayName: names[id]})
	}

	return &SessionView{
		ID:             req.ID,
		GroupID:        req.GroupID,
		RequestedBy:    req.RequestedBy,
		RequesterName:  names[req.RequestedBy],
		CreatedAt:      req.CreatedAt,
		ExpiresAt:      req.ExpiresAt,
		TimeRemaining:  formatTimeRemaining(req.ExpiresAt, time.Now()),
		AgreedMembers:  agreed,
		ViewerResponse: viewerResponse,
	}, nil
}

func (s *PubService) displayName(userID uint) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || user.DisplayName == "" {
		return "Someone"
	}
	return user.DisplayName
}

func (s *PubService) invalidateGroupPendingCounts(groupID uint) {
	memberIDs, err := s.groupRepo.GetMemberIDs(groupID)
	if err != nil {
		log.Printf("pub: loading members of group %d for invalidation failed: %v", groupID, err)
		return
	}
	if err := s.pubCache.InvalidatePendingCounts(memberIDs...); err != nil {
		log.Printf("pub: pending count invalidation for group %d failed: %v", groupID, err)
	}
}

func formatTimeRemaining(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "expired"
	}
	remaining = remaining.Round(time.Minute)
	h := int(remaining.Hours())
	m := int(remaining.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
