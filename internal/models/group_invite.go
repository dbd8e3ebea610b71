package models

import (
	"time"
)

// InviteWindow is how long an emailed invite stays valid.
const InviteWindow = 7 * 24 * time.Hour

// GroupInvite is a single-use, time-bounded token granting group membership.
// It is either consumed exactly once (accepted_at set) or left to expire.
// Unaccepted invites may be cancelled (hard delete); accepted ones never are.
type GroupInvite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	GroupID   uint       `gorm:"index;not null" json:"group_id"`
	InvitedBy uint       `gorm:"not null" json:"invited_by"`
	Email     string     `gorm:"size:255;not null" json:"email"`
	Token     string     `gorm:"uniqueIndex;size:36;not null" json:"token"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time `gorm:"index" json:"accepted_at"`
	AcceptedBy *uint      `json:"accepted_by"`

	Group   Group `gorm:"foreignKey:GroupID" json:"-"`
	Inviter User  `gorm:"foreignKey:InvitedBy" json:"-"`
}

func (i *GroupInvite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *GroupInvite) IsAccepted() bool {
	return i.AcceptedAt != nil
}
