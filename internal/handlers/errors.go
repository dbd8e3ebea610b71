package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/service"
)

// serviceError maps service sentinels onto the shared error envelope.
// Anything unrecognised becomes a 500 without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return httpx.NotFound(c, "group_not_found", "Group not found")
	case errors.Is(err, service.ErrRequestNotFound):
		return httpx.NotFound(c, "request_not_found", "Pub request not found")
	case errors.Is(err, service.ErrInviteNotFound):
		return httpx.NotFound(c, "invite_not_found", "Invite not found")
	case errors.Is(err, service.ErrNotMember):
		return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
	case errors.Is(err, service.ErrDuplicateActiveRequest):
		return httpx.Conflict(c, "request_already_active", "This group already has an active pub request")
	case errors.Is(err, service.ErrOwnRequest):
		return httpx.Conflict(c, "own_request", "You cannot respond to your own pub request")
	case errors.Is(err, service.ErrRequestExpired):
		return httpx.Gone(c, "request_expired", "This pub request has expired")
	case errors.Is(err, service.ErrInviteExpired):
		return httpx.Gone(c, "invite_expired", "This invite has expired")
	case errors.Is(err, service.ErrInviteConsumed):
		return httpx.Gone(c, "invite_consumed", "This invite has already been used")
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid email or password")
	default:
		return httpx.Internal(c, "internal_error")
	}
}
