package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/handlers/ws"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/service"
)

type InviteHandler struct {
	inviteService *service.InviteService
	groupService  *service.GroupService
	hub           *ws.Hub
}

func NewInviteHandler(inviteService *service.InviteService, groupService *service.GroupService, hub *ws.Hub) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, groupService: groupService, hub: hub}
}

func (h *InviteHandler) CreateInvite(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return httpx.BadRequest(c, "invalid_body", "Field 'email' is required")
	}

	invite, err := h.inviteService.CreateInvite(uint(groupID), body.Email, userID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) || errors.Is(err, service.ErrNotMember) {
			return serviceError(c, err)
		}
		return httpx.BadRequest(c, "create_invite_failed", err.Error())
	}

	h.notifyGroup(uint(groupID), ws.InviteCreatedEvent(uint(groupID)))

	return c.Status(fiber.StatusCreated).JSON(invite)
}

func (h *InviteHandler) ListPendingInvites(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	invites, err := h.inviteService.ListPendingInvites(uint(groupID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"invites": invites})
}

func (h *InviteHandler) CancelInvite(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}
	inviteID, err := c.ParamsInt("inviteID")
	if err != nil || inviteID <= 0 {
		return httpx.BadRequest(c, "invalid_invite_id", "Invalid invite ID")
	}

	if err := h.inviteService.CancelInvite(uint(inviteID), userID); err != nil {
		return serviceError(c, err)
	}

	h.notifyGroup(uint(groupID), ws.InviteCancelledEvent(uint(groupID)))

	return c.JSON(fiber.Map{"ok": true})
}

func (h *InviteHandler) ResendInvite(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	inviteID, err := c.ParamsInt("inviteID")
	if err != nil || inviteID <= 0 {
		return httpx.BadRequest(c, "invalid_invite_id", "Invalid invite ID")
	}

	if err := h.inviteService.ResendInvite(uint(inviteID), userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// PreviewInvite shows the join page details for a token. Unauthenticated.
func (h *InviteHandler) PreviewInvite(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return httpx.BadRequest(c, "invalid_token", "Invite token is required")
	}

	preview, err := h.inviteService.PreviewInvite(token)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(preview)
}

// AcceptInvite joins the authenticated user to the invite's group.
func (h *InviteHandler) AcceptInvite(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	token := c.Params("token")
	if token == "" {
		return httpx.BadRequest(c, "invalid_token", "Invite token is required")
	}

	group, err := h.inviteService.AcceptInvite(token, userID)
	if err != nil {
		return serviceError(c, err)
	}

	h.notifyGroup(group.ID, ws.InviteAcceptedEvent(group.ID, userID))

	return c.JSON(group)
}

func (h *InviteHandler) notifyGroup(groupID uint, event ws.Event) {
	if h.hub == nil {
		return
	}
	memberIDs, err := h.groupService.GetMemberIDs(groupID)
	if err != nil {
		log.Printf("Failed to load members of group %d for event fanout: %v", groupID, err)
		return
	}
	h.hub.BroadcastToUsers(memberIDs, event)
}
