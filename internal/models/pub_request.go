package models

import (
	"time"
)

// RequestWindow is how long a pub request stays open after creation.
const RequestWindow = 12 * time.Hour

// PubRequest is a group-scoped, time-bounded "pub?" invitation. A request is
// never closed explicitly; it becomes inactive when expires_at elapses.
type PubRequest struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	GroupID     uint      `gorm:"index;not null" json:"group_id"`
	RequestedBy uint      `gorm:"not null" json:"requested_by"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`

	Group     Group `gorm:"foreignKey:GroupID" json:"-"`
	Requester User  `gorm:"foreignKey:RequestedBy" json:"-"`
}

// IsActive reports whether the request is still open at the given instant.
// Expiry is evaluated at read time; there is no background sweeper.
func (r *PubRequest) IsActive(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

// PubResponse records one member's answer to a pub request. Absence of a row
// means the member has not responded yet. The (request_id, user_id) pair is
// unique at the store level; writes go through an upsert.
type PubResponse struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RequestID   uint      `gorm:"uniqueIndex:idx_request_user;not null" json:"request_id"`
	UserID      uint      `gorm:"uniqueIndex:idx_request_user;not null" json:"user_id"`
	Accepted    bool      `gorm:"not null" json:"accepted"`
	RespondedAt time.Time `gorm:"not null" json:"responded_at"`

	Request PubRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	User    User       `gorm:"foreignKey:UserID" json:"-"`
}

// ResponseStatus is a viewer's answer state on a session view.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseDenied   ResponseStatus = "denied"
)
