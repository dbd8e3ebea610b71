package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/handlers/ws"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/service"
)

type PubHandler struct {
	pubService   *service.PubService
	groupService *service.GroupService
	hub          *ws.Hub
}

func NewPubHandler(pubService *service.PubService, groupService *service.GroupService, hub *ws.Hub) *PubHandler {
	return &PubHandler{pubService: pubService, groupService: groupService, hub: hub}
}

// CreateRequest opens a pub request for the group. 409 when one is already
// active.
func (h *PubHandler) CreateRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	req, err := h.pubService.CreateRequest(uint(groupID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	h.notifyGroup(uint(groupID), ws.PubRequestCreatedEvent(uint(groupID), req.ID, userID))

	view, err := h.pubService.GetSessionView(req.ID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListActiveSessions returns the group's open pub requests, newest first.
func (h *PubHandler) ListActiveSessions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	sessions, err := h.pubService.ListActiveSessions(uint(groupID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *PubHandler) GetSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return httpx.BadRequest(c, "invalid_request_id", "Invalid request ID")
	}

	view, err := h.pubService.GetSessionView(uint(requestID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(view)
}

// Respond records the member's accept or deny. Repeat answers overwrite.
func (h *PubHandler) Respond(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return httpx.BadRequest(c, "invalid_request_id", "Invalid request ID")
	}

	var body struct {
		Accepted *bool `json:"accepted"`
	}
	if err := c.BodyParser(&body); err != nil || body.Accepted == nil {
		return httpx.BadRequest(c, "invalid_body", "Field 'accepted' is required")
	}

	if err := h.pubService.Respond(uint(requestID), userID, *body.Accepted); err != nil {
		return serviceError(c, err)
	}

	view, err := h.pubService.GetSessionView(uint(requestID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	h.notifyGroup(view.GroupID, ws.PubResponseRecordedEvent(view.GroupID, uint(requestID), userID))

	return c.JSON(view)
}

// notifyGroup pushes a change-feed event to every connected group member.
// Best effort only; clients refetch on reconnect.
func (h *PubHandler) notifyGroup(groupID uint, event ws.Event) {
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
