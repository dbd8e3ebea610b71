package ws

import "time"

// Event types pushed to connected clients. Each one tells the client which
// slice of its cached state to refetch.
const (
	EventPubRequestCreated   = "pub_request_created"
	EventPubResponseRecorded = "pub_response_recorded"
	EventInviteCreated       = "invite_created"
	EventInviteAccepted      = "invite_accepted"
	EventInviteCancelled     = "invite_cancelled"
)

type Event struct {
	Type      string    `json:"type"`
	GroupID   uint      `json:"group_id,omitempty"`
	RequestID uint      `json:"request_id,omitempty"`
	UserID    uint      `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType string) Event {
	return Event{Type: eventType, Timestamp: time.Now()}
}

func PubRequestCreatedEvent(groupID, requestID, requesterID uint) Event {
	e := NewEvent(EventPubRequestCreated)
	e.GroupID = groupID
	e.RequestID = requestID
	e.UserID = requesterID
	return e
}

func PubResponseRecordedEvent(groupID, requestID, responderID uint) Event {
	e := NewEvent(EventPubResponseRecorded)
	e.GroupID = groupID
	e.RequestID = requestID
	e.UserID = responderID
	return e
}

func InviteCreatedEvent(groupID uint) Event {
	e := NewEvent(EventInviteCreated)
	e.GroupID = groupID
	return e
}

func InviteAcceptedEvent(groupID, newMemberID uint) Event {
	e := NewEvent(EventInviteAccepted)
	e.GroupID = groupID
	e.UserID = newMemberID
	return e
}

func InviteCancelledEvent(groupID uint) Event {
	e := NewEvent(EventInviteCancelled)
	e.GroupID = groupID
	return e
}
