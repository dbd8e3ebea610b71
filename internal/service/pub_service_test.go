package service

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/repository"
	"github.com/jakeunsted/pub/internal/testutil"
	"gorm.io/gorm"
)

// MockPubRequestRepository is a mock implementation for tests.
// It implements repository.PubRequestRepositoryInterface.
type MockPubRequestRepository struct {
	requests  map[uint]*models.PubRequest
	groups    *MockGroupRepository
	responses *MockPubResponseRepository
	nextID    uint
}

func NewMockPubRequestRepository(groups *MockGroupRepository, responses *MockPubResponseRepository) *MockPubRequestRepository {
	return &MockPubRequestRepository{
		requests:  make(map[uint]*models.PubRequest),
		groups:    groups,
		responses: responses,
		nextID:    1,
	}
}

func (m *MockPubRequestRepository) CreateExclusive(req *models.PubRequest) error {
	now := time.Now()
	for _, existing := range m.requests {
		if existing.GroupID == req.GroupID && existing.ExpiresAt.After(now) {
			return repository.ErrActiveRequestExists
		}
	}
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = now
	m.requests[req.ID] = req
	return nil
}

func (m *MockPubRequestRepository) FindByID(id uint) (*models.PubRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPubRequestRepository) FindActiveByGroup(groupID uint, now time.Time) ([]models.PubRequest, error) {
	var out []models.PubRequest
	for _, r := range m.requests {
		if r.GroupID == groupID && r.ExpiresAt.After(now) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPubRequestRepository) CountPendingForUser(userID uint, now time.Time) (int, error) {
	count := 0
	for _, r := range m.requests {
		if !r.ExpiresAt.After(now) || r.RequestedBy == userID {
			continue
		}
		isMember, _ := m.groups.IsMember(r.GroupID, userID)
		if !isMember {
			continue
		}
		if _, responded := m.responses.responses[r.ID][userID]; responded {
			continue
		}
		count++
	}
	return count, nil
}

// MockPubResponseRepository is a mock implementation for tests.
// It implements repository.PubResponseRepositoryInterface.
type MockPubResponseRepository struct {
	responses map[uint]map[uint]*models.PubResponse
}

func NewMockPubResponseRepository() *MockPubResponseRepository {
	return &MockPubResponseRepository{responses: make(map[uint]map[uint]*models.PubResponse)}
}

func (m *MockPubResponseRepository) Upsert(requestID, userID uint, accepted bool, respondedAt time.Time) error {
	if _, ok := m.responses[requestID]; !ok {
		m.responses[requestID] = make(map[uint]*models.PubResponse)
	}
	m.responses[requestID][userID] = &models.PubResponse{
		RequestID:   requestID,
		UserID:      userID,
		Accepted:    accepted,
		RespondedAt: respondedAt,
	}
	return nil
}

func (m *MockPubResponseRepository) FindByRequest(requestID uint) ([]models.PubResponse, error) {
	var out []models.PubResponse
	for _, r := range m.responses[requestID] {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// setupPubService wires a PubService over mocks with a three-member group:
// Alice (1), Bob (2) and Cara (3).
func setupPubService(t *testing.T) (*PubService, *MockGroupRepository, *MockUserRepository, *MockPubRequestRepository) {
	helper := testutil.NewTestHelper(t)
	groupRepo := NewMockGroupRepository()
	userRepo := NewMockUserRepository()
	responseRepo := NewMockPubResponseRepository()
	requestRepo := NewMockPubRequestRepository(groupRepo, responseRepo)

	userRepo.Create(helper.CreateTestUser(1, "alice@example.com", "Alice"))
	userRepo.Create(helper.CreateTestUser(2, "bob@example.com", "Bob"))
	userRepo.Create(helper.CreateTestUser(3, "cara@example.com", "Cara"))

	groupRepo.Create(helper.CreateTestGroup(10, "The Locals", 1))
	groupRepo.AddMember(10, 1)
	groupRepo.AddMember(10, 2)
	groupRepo.AddMember(10, 3)

	svc := NewPubService(requestRepo, responseRepo, groupRepo, userRepo, nil, nil)
	return svc, groupRepo, userRepo, requestRepo
}

func TestCreateRequest(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	req, err := svc.CreateRequest(10, 1)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.GroupID != 10 || req.RequestedBy != 1 {
		t.Errorf("request = %+v, want group 10 requested by 1", req)
	}

	window := time.Until(req.ExpiresAt)
	if window < models.RequestWindow-time.Minute || window > models.RequestWindow {
		t.Errorf("expiry window = %v, want about %v", window, models.RequestWindow)
	}
}

func TestCreateRequest_NotMember(t *testing.T) {
	svc, _, userRepo, _ := setupPubService(t)
	userRepo.Create(&models.User{ID: 4, Email: "dan@example.com", DisplayName: "Dan"})

	if _, err := svc.CreateRequest(10, 4); !errors.Is(err, ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}
}

func TestCreateRequest_GroupNotFound(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	if _, err := svc.CreateRequest(99, 1); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestCreateRequest_OnlyOneActivePerGroup(t *testing.T) {
	svc, _, _, requestRepo := setupPubService(t)

	first, err := svc.CreateRequest(10, 1)
	if err != nil {
		t.Fatalf("first CreateRequest: %v", err)
	}

	// A second request while the first is open must fail, whoever asks.
	if _, err := svc.CreateRequest(10, 2); !errors.Is(err, ErrDuplicateActiveRequest) {
		t.Fatalf("err = %v, want ErrDuplicateActiveRequest", err)
	}

	// Once the first expires a new round may open.
	requestRepo.requests[first.ID].ExpiresAt = time.Now().Add(-time.Second)
	if _, err := svc.CreateRequest(10, 2); err != nil {
		t.Fatalf("CreateRequest after expiry: %v", err)
	}
}

func TestRespond(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	req, err := svc.CreateRequest(10, 1)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if err := svc.Respond(req.ID, 2, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	view, err := svc.GetSessionView(req.ID, 2)
	if err != nil {
		t.Fatalf("GetSessionView: %v", err)
	}
	if view.ViewerResponse != models.ResponseAccepted {
		t.Errorf("viewer response = %q, want accepted", view.ViewerResponse)
	}
}

func TestRespond_LatestAnswerWins(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	req, _ := svc.CreateRequest(10, 1)

	answers := []bool{true, false, true, false}
	for _, accepted := range answers {
		if err := svc.Respond(req.ID, 2, accepted); err != nil {
			t.Fatalf("Respond(%v): %v", accepted, err)
		}
	}

	view, err := svc.GetSessionView(req.ID, 2)
	if err != nil {
		t.Fatalf("GetSessionView: %v", err)
	}
	if view.ViewerResponse != models.ResponseDenied {
		t.Errorf("viewer response = %q, want denied (last answer)", view.ViewerResponse)
	}
	for _, m := range view.AgreedMembers {
		if m.UserID == 2 {
			t.Errorf("user 2 in agreed set after final deny")
		}
	}
}

func TestRespond_Errors(t *testing.T) {
	svc, _, userRepo, requestRepo := setupPubService(t)
	userRepo.Create(&models.User{ID: 4, Email: "dan@example.com", DisplayName: "Dan"})

	req, _ := svc.CreateRequest(10, 1)

	tests := []struct {
		name    string
		reqID   uint
		userID  uint
		setup   func()
		wantErr error
	}{
		{"Unknown request", 999, 2, nil, ErrRequestNotFound},
		{"Requester cannot respond", req.ID, 1, nil, ErrOwnRequest},
		{"Non-member", req.ID, 4, nil, ErrNotMember},
		{"Expired request", req.ID, 2, func() {
			requestRepo.requests[req.ID].ExpiresAt = time.Now().Add(-time.Second)
		}, ErrRequestExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			if err := svc.Respond(tt.reqID, tt.userID, true); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetSessionView_AgreedAlwaysContainsRequester(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	req, _ := svc.CreateRequest(10, 1)

	// Everyone else denies; the requester still counts as going.
	svc.Respond(req.ID, 2, false)
	svc.Respond(req.ID, 3, false)

	view, err := svc.GetSessionView(req.ID, 1)
	if err != nil {
		t.Fatalf("GetSessionView: %v", err)
	}
	if len(view.AgreedMembers) != 1 || view.AgreedMembers[0].UserID != 1 {
		t.Fatalf("agreed = %+v, want just the requester", view.AgreedMembers)
	}
	if view.AgreedMembers[0].DisplayName != "Alice" {
		t.Errorf("requester name = %q, want Alice", view.AgreedMembers[0].DisplayName)
	}
	if view.ViewerResponse != models.ResponseAccepted {
		t.Errorf("requester viewer response = %q, want accepted", view.ViewerResponse)
	}
}

func TestGetSessionView_NonMemberForbidden(t *testing.T) {
	svc, _, userRepo, _ := setupPubService(t)
	userRepo.Create(&models.User{ID: 4, Email: "dan@example.com", DisplayName: "Dan"})

	req, _ := svc.CreateRequest(10, 1)

	if _, err := svc.GetSessionView(req.ID, 4); !errors.Is(err, ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}
}

func TestListActiveSessions_ExcludesExpired(t *testing.T) {
	svc, _, _, requestRepo := setupPubService(t)

	req, _ := svc.CreateRequest(10, 1)
	requestRepo.requests[req.ID].ExpiresAt = time.Now().Add(-time.Minute)

	sessions, err := svc.ListActiveSessions(10, 2)
	if err != nil {
		t.Fatalf("ListActiveSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0 after expiry", len(sessions))
	}
}

func TestPendingCount(t *testing.T) {
	svc, _, _, requestRepo := setupPubService(t)

	req, _ := svc.CreateRequest(10, 1)

	// The requester never owes themselves an answer.
	if count, _ := svc.PendingCount(1); count != 0 {
		t.Errorf("requester pending = %d, want 0", count)
	}

	if count, _ := svc.PendingCount(2); count != 1 {
		t.Errorf("pending before answering = %d, want 1", count)
	}

	if err := svc.Respond(req.ID, 2, false); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if count, _ := svc.PendingCount(2); count != 0 {
		t.Errorf("pending after answering = %d, want 0", count)
	}

	// Cara never answered; expiry clears her count anyway.
	if count, _ := svc.PendingCount(3); count != 1 {
		t.Errorf("pending for silent member = %d, want 1", count)
	}
	requestRepo.requests[req.ID].ExpiresAt = time.Now().Add(-time.Second)
	if count, _ := svc.PendingCount(3); count != 0 {
		t.Errorf("pending after expiry = %d, want 0", count)
	}
}

func TestPubRoundTrip(t *testing.T) {
	svc, _, _, _ := setupPubService(t)

	// Alice asks, Bob is in, Cara is out.
	req, err := svc.CreateRequest(10, 1)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := svc.Respond(req.ID, 2, true); err != nil {
		t.Fatalf("Bob accepts: %v", err)
	}
	if err := svc.Respond(req.ID, 3, false); err != nil {
		t.Fatalf("Cara denies: %v", err)
	}

	view, err := svc.GetSessionView(req.ID, 3)
	if err != nil {
		t.Fatalf("GetSessionView: %v", err)
	}

	agreed := make([]uint, 0, len(view.AgreedMembers))
	for _, m := range view.AgreedMembers {
		agreed = append(agreed, m.UserID)
	}
	sort.Slice(agreed, func(i, j int) bool { return agreed[i] < agreed[j] })
	if len(agreed) != 2 || agreed[0] != 1 || agreed[1] != 2 {
		t.Errorf("agreed = %v, want [1 2]", agreed)
	}
	if view.ViewerResponse != models.ResponseDenied {
		t.Errorf("Cara's status = %q, want denied", view.ViewerResponse)
	}

	// Bob changes his mind; only the requester remains.
	if err := svc.Respond(req.ID, 2, false); err != nil {
		t.Fatalf("Bob flips to deny: %v", err)
	}
	view, _ = svc.GetSessionView(req.ID, 2)
	if len(view.AgreedMembers) != 1 || view.AgreedMembers[0].UserID != 1 {
		t.Errorf("agreed after flip = %+v, want just Alice", view.AgreedMembers)
	}
}

func TestFormatTimeRemaining(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"Expired", now.Add(-time.Minute), "expired"},
		{"Minutes only", now.Add(45 * time.Minute), "45m"},
		{"Hours and minutes", now.Add(11*time.Hour + 30*time.Minute), "11h 30m"},
		{"Exact hours", now.Add(2 * time.Hour), "2h 0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimeRemaining(tt.in, now); got != tt.want {
				t.Errorf("formatTimeRemaining = %q, want %q", got, tt.want)
			}
		})
	}
}
