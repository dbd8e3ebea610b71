package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jakeunsted/pub/internal/httpx"
	"github.com/jakeunsted/pub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	h.setAuthCookies(c, result)
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return serviceError(c, err)
	}

	h.setAuthCookies(c, result)
	return c.JSON(result)
}

// Refresh rotates the refresh token. Browser clients send it via the
// pub_refresh cookie; native clients via the request body.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("pub_refresh")
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}
	if refreshToken == "" {
		return httpx.Unauthorized(c, "missing_refresh_token", "Refresh token required")
	}

	result, err := h.authService.Refresh(refreshToken)
	if err != nil {
		h.clearAuthCookies(c)
		return serviceError(c, err)
	}

	h.setAuthCookies(c, result)
	return c.JSON(result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("pub_refresh")
	if err := h.authService.Logout(refreshToken); err != nil {
		return httpx.Internal(c, "logout_failed")
	}

	h.clearAuthCookies(c)
	return c.JSON(fiber.Map{"ok": true})
}

// CSRFToken issues the double-submit token as a readable cookie plus body.
func (h *AuthHandler) CSRFToken(c *fiber.Ctx) error {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return httpx.Internal(c, "csrf_generation_failed")
	}
	token := hex.EncodeToString(b)

	c.Cookie(&fiber.Cookie{
		Name:     "pub_csrf",
		Value:    token,
		Path:     "/",
		Secure:   cookieSecure(),
		HTTPOnly: false,
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.JSON(fiber.Map{"csrf_token": token})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, result *service.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     "pub_access",
		Value:    result.AccessToken,
		Path:     "/",
		Secure:   cookieSecure(),
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(service.AccessTokenTTL),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "pub_refresh",
		Value:    result.RefreshToken,
		Path:     "/api/auth",
		Secure:   cookieSecure(),
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(service.RefreshTokenTTL),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "pub_access", Value: "", Path: "/", HTTPOnly: true, Expires: expired})
	c.Cookie(&fiber.Cookie{Name: "pub_refresh", Value: "", Path: "/api/auth", HTTPOnly: true, Expires: expired})
}

func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") != "false"
}
