package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/auth"
	"github.com/example/campusmart/internal/config"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/otp"
	"github.com/example/campusmart/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth  *auth.Service
	codes *otp.Service
	cfg   *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *auth.Service, codes *otp.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: authService, codes: codes, cfg: cfg}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

// SendOTP issues an email-channel code. The response is the same whether or
// not the address belongs to an account.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.Validation("a valid email is required")
	}

	if _, err := h.codes.Issue(c.Context(), email, otp.ChannelEmail); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "if the address can receive mail, a code is on its way",
	})
}

type sendWhatsAppOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// SendWhatsAppOTP issues a messaging-app-channel code.
func (h *AuthHandler) SendWhatsAppOTP(c *fiber.Ctx) error {
	var req sendWhatsAppOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	number := strings.TrimSpace(req.PhoneNumber)
	if number == "" {
		return apperrors.Validation("phoneNumber is required")
	}

	if _, err := h.codes.Issue(c.Context(), number, otp.ChannelWhatsApp); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "if the number is reachable, a code is on its way",
	})
}

// Login dispatches to one of the credential paths and returns a session
// token on success.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	creds, err := auth.ParseLogin(req)
	if err != nil {
		return err
	}

	user, err := h.auth.Resolve(c.Context(), creds)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userResponse(user),
		"token":   token,
	})
}

func userResponse(user *models.User) fiber.Map {
	resp := fiber.Map{
		"id":                  user.ID,
		"username":            user.Username,
		"role":                user.Role,
		"is_merchant":         user.IsMerchant,
		"verification_status": user.VerificationStatus,
	}
	if user.Email != nil {
		resp["email"] = *user.Email
		resp["email_verified"] = user.EmailVerified
	}
	if user.WhatsAppNumber != nil {
		resp["whatsapp_number"] = *user.WhatsAppNumber
		resp["whatsapp_verified"] = user.WhatsAppVerified
	}
	return resp
}
