package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/otp"
	"github.com/example/campusmart/internal/utils"
)

// Service authenticates and registers marketplace accounts.
type Service struct {
	db          *gorm.DB
	codes       *otp.Service
	inviteToken string
}

// NewService constructs the credential resolver.
func NewService(db *gorm.DB, codes *otp.Service, adminInviteToken string) *Service {
	return &Service{db: db, codes: codes, inviteToken: adminInviteToken}
}

// Resolve authenticates a credential variant and returns the matching user.
// Failure messages stay generic so callers cannot probe which identifiers
// exist.
func (s *Service) Resolve(ctx context.Context, creds Credentials) (*models.User, error) {
	switch c := creds.(type) {
	case PasswordCredentials:
		return s.resolvePassword(ctx, c)
	case WhatsAppCodeCredentials:
		return s.resolveWhatsAppCode(ctx, c)
	case EmailCodeCredentials:
		return s.resolveEmailCode(ctx, c)
	default:
		return nil, apperrors.Validation("no valid credential combination")
	}
}

func (s *Service) resolvePassword(ctx context.Context, c PasswordCredentials) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", c.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Non-admin accounts never carry a password hash, which keeps them off
	// this path entirely.
	if user.PasswordHash == "" {
		return nil, apperrors.Validation("password login is not available for this account")
	}

	if !utils.CheckPassword(user.PasswordHash, c.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

func (s *Service) resolveWhatsAppCode(ctx context.Context, c WhatsAppCodeCredentials) (*models.User, error) {
	if err := s.codes.Validate(ctx, c.PhoneNumber, otp.ChannelWhatsApp, c.Code); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("whatsapp_number = ?", c.PhoneNumber).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if !user.WhatsAppVerified {
		if err := s.db.WithContext(ctx).Model(&user).Update("whatsapp_verified", true).Error; err != nil {
			return nil, err
		}
		user.WhatsAppVerified = true
	}

	return &user, nil
}

func (s *Service) resolveEmailCode(ctx context.Context, c EmailCodeCredentials) (*models.User, error) {
	if err := s.codes.Validate(ctx, c.Email, otp.ChannelEmail, c.Code); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", c.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if !user.EmailVerified {
		if err := s.db.WithContext(ctx).Model(&user).Update("email_verified", true).Error; err != nil {
			return nil, err
		}
		user.EmailVerified = true
	}

	return &user, nil
}
