package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/models"
	"github.com/jakeunsted/pub/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	pubService  *service.PubService
}

func NewUserHandler(userService *service.UserService, pubService *service.PubService) *UserHandler {
	return &UserHandler{userService: userService, pubService: pubService}
}

func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return httpx.NotFound(c, "user_not_found", "User not found")
	}

	return c.JSON(user.ToResponse())
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		return httpx.BadRequest(c, "update_failed", err.Error())
	}

	return c.JSON(user.ToResponse())
}

// GetPendingCount returns how many active pub requests across the user's
// groups still await their answer. Drives the app badge.
func (h *UserHandler) GetPendingCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := h.pubService.PendingCount(userID)
	if err != nil {
		return httpx.Internal(c, "pending_count_failed")
	}

	return c.JSON(fiber.Map{"pending_count": count})
}

func (h *UserHandler) RegisterDeviceToken(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var body struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.userService.RegisterDeviceToken(userID, body.Token, models.DevicePlatform(body.Platform)); err != nil {
		return httpx.BadRequest(c, "device_token_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (h *UserHandler) UnregisterDeviceToken(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.userService.UnregisterDeviceToken(userID, body.Token); err != nil {
		return httpx.BadRequest(c, "device_token_failed", err.Error())
	}

	return c.JSON(fiber.Map{"ok": true})
}
