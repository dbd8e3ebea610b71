package service

import (
	"errors"
	"fmt"

	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/repository"
	"github.com/jakeunsted/pub/internal/validation"
	"gorm.io/gorm"
)

type GroupService struct {
	groupRepo repository.GroupRepositoryInterface
}

func NewGroupService(groupRepo repository.GroupRepositoryInterface) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup creates a group and auto-joins the creator, so a group always
// has at least one member.
func (s *GroupService) CreateGroup(name string, creatorID uint) (*models.Group, error) {
	name = validation.TrimAndLimit(name, 100)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	group := &models.Group{
		Name:      name,
		CreatedBy: creatorID,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	if err := s.groupRepo.AddMember(group.ID, creatorID); err != nil {
		return nil, fmt.Errorf("add creator membership: %w", err)
	}

	return s.groupRepo.FindByID(group.ID)
}

func (s *GroupService) GetGroup(groupID, viewerID uint) (*models.Group, error) {
	isMember, err := s.groupRepo.IsMember(groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}
	return group, nil
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) GetGroupMembers(groupID, viewerID uint) ([]models.User, error) {
	isMember, err := s.groupRepo.IsMember(groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}
	return s.groupRepo.GetMembers(groupID)
}

func (s *GroupService) GetMemberIDs(groupID uint) ([]uint, error) {
	return s.groupRepo.GetMemberIDs(groupID)
}

func (s *GroupService) LeaveGroup(groupID, userID uint) error {
	return s.groupRepo.RemoveMember(groupID, userID)
}

func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	return s.groupRepo.IsMember(groupID, userID)
}
