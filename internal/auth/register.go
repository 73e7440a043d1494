package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/otp"
	"github.com/example/campusmart/internal/utils"
)

// RegisterRequest is the buyer registration body: the email must be proven
// with a freshly issued email code.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	OTPCode  string `json:"otpCode"`
}

// SellerRegisterRequest is the seller registration body: the WhatsApp number
// must be proven with a freshly issued messaging code. Email is optional and
// stays unverified until used on the email-code login path.
type SellerRegisterRequest struct {
	Username        string `json:"username"`
	WhatsAppNumber  string `json:"whatsappNumber"`
	WhatsAppOTPCode string `json:"whatsappOtpCode"`
	Email           string `json:"email"`
}

// AdminRegisterRequest is the admin registration body. Admins are the only
// password holders and are never reachable via code login.
type AdminRegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken"`
}

// RegisterBuyer creates a buyer account after validating the email code.
func (s *Service) RegisterBuyer(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Username == "" || req.Email == "" || req.OTPCode == "" {
		return nil, apperrors.Validation("username, email and otpCode are required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, apperrors.Validation("invalid email address")
	}

	if err := s.codes.Validate(ctx, req.Email, otp.ChannelEmail, req.OTPCode); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	user := models.User{
		Username:      req.Username,
		Email:         &req.Email,
		Role:          models.RoleBuyer,
		EmailVerified: true,

		VerificationStatus: models.VerificationUnverified,
	}
	return s.insert(ctx, &user)
}

// RegisterSeller creates a seller account after validating the WhatsApp
// code. Role is forced to seller and the merchant flag is set.
func (s *Service) RegisterSeller(ctx context.Context, req SellerRegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Username == "" || req.WhatsAppNumber == "" || req.WhatsAppOTPCode == "" {
		return nil, apperrors.Validation("username, whatsappNumber and whatsappOtpCode are required")
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return nil, apperrors.Validation("invalid email address")
	}

	if err := s.codes.Validate(ctx, req.WhatsAppNumber, otp.ChannelWhatsApp, req.WhatsAppOTPCode); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, req.Username, req.Email, req.WhatsAppNumber); err != nil {
		return nil, err
	}

	user := models.User{
		Username:         req.Username,
		WhatsAppNumber:   &req.WhatsAppNumber,
		Role:             models.RoleSeller,
		IsMerchant:       true,
		WhatsAppVerified: true,

		VerificationStatus: models.VerificationUnverified,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	return s.insert(ctx, &user)
}

// RegisterAdmin creates an admin account. The invite token must match the
// configured secret; an unset secret disables admin registration outright.
func (s *Service) RegisterAdmin(ctx context.Context, req AdminRegisterRequest) (*models.User, error) {
	if s.inviteToken == "" {
		return nil, apperrors.ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(req.InviteToken), []byte(s.inviteToken)) != 1 {
		return nil, apperrors.ErrForbidden
	}

	req.Email = normalizeEmail(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.Validation("username, email and password are required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, apperrors.Validation("invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	if err := s.checkUnique(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        &req.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,

		VerificationStatus: models.VerificationUnverified,
	}
	return s.insert(ctx, &user)
}

func (s *Service) checkUnique(ctx context.Context, username, email, whatsapp string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("username %w", apperrors.ErrConflict)
	}

	if email != "" {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("email %w", apperrors.ErrConflict)
		}
	}

	if whatsapp != "" {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("whatsapp_number = ?", whatsapp).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("whatsapp number %w", apperrors.ErrConflict)
		}
	}

	return nil
}

// insert creates the user; unique indexes back the pre-checks, so a racing
// duplicate still surfaces as a conflict rather than a 500.
func (s *Service) insert(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("account %w", apperrors.ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
