package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	group, err := h.groupService.CreateGroup(body.Name, userID)
	if err != nil {
		return httpx.BadRequest(c, "create_group_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) GetUserGroups(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return httpx.Internal(c, "list_groups_failed")
	}

	return c.JSON(fiber.Map{"groups": groups})
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	group, err := h.groupService.GetGroup(uint(groupID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(group)
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	members, err := h.groupService.GetGroupMembers(uint(groupID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]models.UserResponse, 0, len(members))
	for _, m := range members {
		out = append(out, m.ToResponse())
	}

	return c.JSON(fiber.Map{"members": out})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	if err := h.groupService.LeaveGroup(uint(groupID), userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}
