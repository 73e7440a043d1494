package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/auth"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/utils"
)

// Register creates a buyer account via the email-code path.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	user, err := h.auth.RegisterBuyer(c.Context(), req)
	if err != nil {
		return err
	}

	return h.created(c, user)
}

// RegisterSeller creates a seller account via the messaging-code path.
func (h *AuthHandler) RegisterSeller(c *fiber.Ctx) error {
	var req auth.SellerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	user, err := h.auth.RegisterSeller(c.Context(), req)
	if err != nil {
		return err
	}

	return h.created(c, user)
}

// RegisterAdmin creates an admin account gated by the invite token.
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req auth.AdminRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	user, err := h.auth.RegisterAdmin(c.Context(), req)
	if err != nil {
		return err
	}

	return h.created(c, user)
}

func (h *AuthHandler) created(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    userResponse(user),
		"token":   token,
	})
}
