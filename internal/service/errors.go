package service

import "errors"

// Domain errors returned across the service boundary. Handlers map these to
// HTTP status codes; anything else is treated as a store failure.
var (
	ErrNotMember              = errors.New("user is not a member of this group")
	ErrGroupNotFound          = errors.New("group not found")
	ErrDuplicateActiveRequest = errors.New("this group already has an active pub request")
	ErrRequestNotFound        = errors.New("pub request not found")
	ErrRequestExpired         = errors.New("pub request has expired")
	ErrOwnRequest             = errors.New("requester cannot respond to their own request")
	ErrInviteNotFound         = errors.New("invite not found")
	ErrInviteExpired          = errors.New("invite has expired")
	ErrInviteConsumed         = errors.New("invite has already been accepted")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)
