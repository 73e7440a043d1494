package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/database"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/otp"
	"github.com/example/campusmart/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestAuth(t *testing.T) (*Service, *gorm.DB, *otp.Service) {
	t.Helper()
	db := newTestDB(t)
	codes := otp.NewService(otp.NewMemoryStore(), 15*time.Minute, zerolog.Nop())
	return NewService(db, codes, "campus-secret"), db, codes
}

func seedUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestParseLogin_DispatchOrder(t *testing.T) {
	creds, err := ParseLogin(LoginRequest{Email: "a@u.edu", Password: "pw", OTPCode: "123456"})
	require.NoError(t, err)
	assert.IsType(t, PasswordCredentials{}, creds, "password wins over email code")

	creds, err = ParseLogin(LoginRequest{Email: "a@u.edu", WhatsAppNumber: "+15550001", WhatsAppOTPCode: "123456", OTPCode: "654321"})
	require.NoError(t, err)
	assert.IsType(t, WhatsAppCodeCredentials{}, creds, "whatsapp code wins over email code")

	creds, err = ParseLogin(LoginRequest{Email: "a@u.edu", OTPCode: "123456"})
	require.NoError(t, err)
	assert.IsType(t, EmailCodeCredentials{}, creds)

	_, err = ParseLogin(LoginRequest{Email: "a@u.edu"})
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve, "no combination present")
}

func TestResolvePassword(t *testing.T) {
	svc, db, _ := newTestAuth(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("correct horse")
	require.NoError(t, err)
	email := "admin@u.edu"
	seedUser(t, db, &models.User{
		Username:           "root",
		Email:              &email,
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		VerificationStatus: models.VerificationUnverified,
	})

	user, err := svc.Resolve(ctx, PasswordCredentials{Email: email, Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "root", user.Username)

	_, err = svc.Resolve(ctx, PasswordCredentials{Email: email, Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Resolve(ctx, PasswordCredentials{Email: "ghost@u.edu", Password: "anything"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestResolvePassword_CodeOnlyAccount(t *testing.T) {
	svc, db, _ := newTestAuth(t)

	email := "buyer@u.edu"
	seedUser(t, db, &models.User{
		Username:           "buyer",
		Email:              &email,
		Role:               models.RoleBuyer,
		VerificationStatus: models.VerificationUnverified,
	})

	_, err := svc.Resolve(context.Background(), PasswordCredentials{Email: email, Password: "anything"})
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve, "accounts without a password secret never match the password path")
}

func TestResolveEmailCode(t *testing.T) {
	svc, db, codes := newTestAuth(t)
	ctx := context.Background()

	email := "buyer@u.edu"
	seedUser(t, db, &models.User{
		Username:           "buyer",
		Email:              &email,
		Role:               models.RoleBuyer,
		VerificationStatus: models.VerificationUnverified,
	})

	code, err := codes.Issue(ctx, email, otp.ChannelEmail)
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, EmailCodeCredentials{Email: email, Code: code})
	require.NoError(t, err)
	assert.True(t, user.EmailVerified, "successful code login marks the email verified")

	// The code was consumed by the login.
	_, err = svc.Resolve(ctx, EmailCodeCredentials{Email: email, Code: code})
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)
}

func TestResolveEmailCode_UnknownUser(t *testing.T) {
	svc, _, codes := newTestAuth(t)
	ctx := context.Background()

	code, err := codes.Issue(ctx, "nobody@u.edu", otp.ChannelEmail)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, EmailCodeCredentials{Email: "nobody@u.edu", Code: code})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveWhatsAppCode(t *testing.T) {
	svc, db, codes := newTestAuth(t)
	ctx := context.Background()

	number := "+15550001"
	seedUser(t, db, &models.User{
		Username:           "seller",
		WhatsAppNumber:     &number,
		Role:               models.RoleSeller,
		IsMerchant:         true,
		VerificationStatus: models.VerificationUnverified,
	})

	code, err := codes.Issue(ctx, number, otp.ChannelWhatsApp)
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, WhatsAppCodeCredentials{PhoneNumber: number, Code: code})
	require.NoError(t, err)
	assert.True(t, user.WhatsAppVerified)
	assert.Equal(t, models.RoleSeller, user.Role)
}

func TestRegisterBuyer(t *testing.T) {
	svc, _, codes := newTestAuth(t)
	ctx := context.Background()

	code, err := codes.Issue(ctx, "a@u.edu", otp.ChannelEmail)
	require.NoError(t, err)

	user, err := svc.RegisterBuyer(ctx, RegisterRequest{
		Username: "alice",
		Email:    "A@U.edu",
		OTPCode:  code,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.Equal(t, "a@u.edu", *user.Email, "email is normalized")
	assert.True(t, user.EmailVerified)
	assert.Equal(t, models.VerificationUnverified, user.VerificationStatus)
}

func TestRegisterBuyer_StaleCode(t *testing.T) {
	svc, _, codes := newTestAuth(t)
	ctx := context.Background()

	stale, err := codes.Issue(ctx, "a@u.edu", otp.ChannelEmail)
	require.NoError(t, err)
	fresh, err := codes.Issue(ctx, "a@u.edu", otp.ChannelEmail)
	require.NoError(t, err)

	if stale != fresh {
		_, err = svc.RegisterBuyer(ctx, RegisterRequest{Username: "alice", Email: "a@u.edu", OTPCode: stale})
		assert.ErrorIs(t, err, apperrors.ErrOTPInvalidOrExpired)
	}

	_, err = svc.RegisterBuyer(ctx, RegisterRequest{Username: "alice", Email: "a@u.edu", OTPCode: fresh})
	require.NoError(t, err)
}

func TestRegisterSeller_DuplicateWhatsAppNumber(t *testing.T) {
	svc, _, codes := newTestAuth(t)
	ctx := context.Background()

	code, err := codes.Issue(ctx, "+15550001", otp.ChannelWhatsApp)
	require.NoError(t, err)

	first, err := svc.RegisterSeller(ctx, SellerRegisterRequest{
		Username:        "shop-one",
		WhatsAppNumber:  "+15550001",
		WhatsAppOTPCode: code,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, first.Role)
	assert.True(t, first.IsMerchant)
	assert.True(t, first.WhatsAppVerified)

	code, err = codes.Issue(ctx, "+15550001", otp.ChannelWhatsApp)
	require.NoError(t, err)

	_, err = svc.RegisterSeller(ctx, SellerRegisterRequest{
		Username:        "shop-two",
		WhatsAppNumber:  "+15550001",
		WhatsAppOTPCode: code,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegisterAdmin_InviteToken(t *testing.T) {
	svc, db, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, AdminRegisterRequest{
		Username:    "root",
		Email:       "root@u.edu",
		Password:    "super secret",
		InviteToken: "not-the-secret",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "no user is created on a rejected invite token")

	admin, err := svc.RegisterAdmin(ctx, AdminRegisterRequest{
		Username:    "root",
		Email:       "root@u.edu",
		Password:    "super secret",
		InviteToken: "campus-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.PasswordHash)
}

func TestRegisterAdmin_DisabledWithoutConfiguredToken(t *testing.T) {
	db := newTestDB(t)
	codes := otp.NewService(otp.NewMemoryStore(), 15*time.Minute, zerolog.Nop())
	svc := NewService(db, codes, "")

	_, err := svc.RegisterAdmin(context.Background(), AdminRegisterRequest{
		Username:    "root",
		Email:       "root@u.edu",
		Password:    "super secret",
		InviteToken: "",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
