package service

import (
	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

// MockGroupRepository is a mock implementation for tests.
// It implements repository.GroupRepositoryInterface.
type MockGroupRepository struct {
	groups      map[uint]*models.Group
	memberships map[uint]map[uint]bool
	nextID      uint
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[uint]*models.Group),
		memberships: make(map[uint]map[uint]bool),
		nextID:      1,
	}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) AddMember(groupID, userID uint) error {
	if _, ok := m.memberships[groupID]; !ok {
		m.memberships[groupID] = make(map[uint]bool)
	}
	m.memberships[groupID][userID] = true
	return nil
}

func (m *MockGroupRepository) RemoveMember(groupID, userID uint) error {
	if gm, ok := m.memberships[groupID]; ok {
		delete(gm, userID)
	}
	return nil
}

func (m *MockGroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	var out []models.User
	for userID := range m.memberships[groupID] {
		out = append(out, models.User{ID: userID})
	}
	return out, nil
}

func (m *MockGroupRepository) GetMemberIDs(groupID uint) ([]uint, error) {
	var out []uint
	for userID := range m.memberships[groupID] {
		out = append(out, userID)
	}
	return out, nil
}

func (m *MockGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	return m.memberships[groupID][userID], nil
}

func (m *MockGroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var out []models.Group
	for groupID, members := range m.memberships {
		if members[userID] {
			if g, ok := m.groups[groupID]; ok {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (m *MockGroupRepository) GetUserGroupIDs(userID uint) ([]uint, error) {
	var out []uint
	for groupID, members := range m.memberships {
		if members[userID] {
			out = append(out, groupID)
		}
	}
	return out, nil
}
