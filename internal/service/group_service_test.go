package service

import (
	"errors"
	"testing"

	"github.com/jakeunsted/pub/internal/models"
)

func TestCreateGroup(t *testing.T) {
	groupRepo := NewMockGroupRepository()
	svc := NewGroupService(groupRepo)

	group, err := svc.CreateGroup("  The Locals  ", 1)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if group.Name != "The Locals" {
		t.Errorf("name = %q, want trimmed The Locals", group.Name)
	}

	// The creator is always a member.
	isMember, _ := groupRepo.IsMember(group.ID, 1)
	if !isMember {
		t.Errorf("creator is not a member")
	}

	if _, err := svc.CreateGroup("   ", 1); err == nil {
		t.Errorf("expected error for blank name")
	}
}

func TestGetGroup_MembershipRequired(t *testing.T) {
	groupRepo := NewMockGroupRepository()
	svc := NewGroupService(groupRepo)

	groupRepo.Create(&models.Group{ID: 10, Name: "The Locals", CreatedBy: 1})
	groupRepo.AddMember(10, 1)

	if _, err := svc.GetGroup(10, 1); err != nil {
		t.Fatalf("GetGroup for member: %v", err)
	}
	if _, err := svc.GetGroup(10, 2); !errors.Is(err, ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}
	if _, err := svc.GetGroupMembers(10, 2); !errors.Is(err, ErrNotMember) {
		t.Errorf("members err = %v, want ErrNotMember", err)
	}
}

func TestLeaveGroup(t *testing.T) {
	groupRepo := NewMockGroupRepository()
	svc := NewGroupService(groupRepo)

	groupRepo.Create(&models.Group{ID: 10, Name: "The Locals", CreatedBy: 1})
	groupRepo.AddMember(10, 1)
	groupRepo.AddMember(10, 2)

	if err := svc.LeaveGroup(10, 2); err != nil {
		t.Fatalf("LeaveGroup: %v", err)
	}
	isMember, _ := groupRepo.IsMember(10, 2)
	if isMember {
		t.Errorf("user 2 still a member after leaving")
	}
}
