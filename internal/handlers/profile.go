package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/middleware"
	"github.com/example/campusmart/internal/models"
)

// ProfileHandler manages the authenticated user's own record.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's account.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.WithContext(c.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": userResponse(&user)})
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// UpdateProfile changes the caller's username.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Username == "" {
		return apperrors.Validation("username is required")
	}

	var count int64
	if err := h.db.WithContext(c.Context()).Model(&models.User{}).
		Where("username = ? AND id <> ?", req.Username, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("username %w", apperrors.ErrConflict)
	}

	var user models.User
	if err := h.db.WithContext(c.Context()).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := h.db.WithContext(c.Context()).Model(&user).Update("username", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username %w", apperrors.ErrConflict)
		}
		return err
	}
	user.Username = req.Username

	return c.JSON(fiber.Map{"success": true, "user": userResponse(&user)})
}
