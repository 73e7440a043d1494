package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/models"
)

// Documents are references to uploaded identity artifacts. Either field may
// be empty; whether a submission is complete is a product concern, not
// enforced here.
type Documents struct {
	IDScan   string
	FaceScan string
}

// Gate tracks each user's document-verification status and enforces the
// preconditions derived from it.
type Gate struct {
	db *gorm.DB
}

// NewGate constructs the verification gate.
func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// SubmitSellerDocuments records seller-context documents and moves the user
// to pending review. A re-submission re-opens a verified or rejected status.
func (g *Gate) SubmitSellerDocuments(ctx context.Context, userID uuid.UUID, docs Documents) error {
	updates := map[string]any{}
	if docs.IDScan != "" {
		updates["seller_id_scan"] = docs.IDScan
	}
	if docs.FaceScan != "" {
		updates["seller_face_scan"] = docs.FaceScan
	}
	return g.submit(ctx, userID, updates)
}

// SubmitBuyerDocuments records buyer-context documents and moves the user to
// pending review.
func (g *Gate) SubmitBuyerDocuments(ctx context.Context, userID uuid.UUID, docs Documents) error {
	updates := map[string]any{}
	if docs.IDScan != "" {
		updates["buyer_id_scan"] = docs.IDScan
	}
	if docs.FaceScan != "" {
		updates["buyer_face_scan"] = docs.FaceScan
	}
	return g.submit(ctx, userID, updates)
}

func (g *Gate) submit(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return apperrors.Validation("at least one document is required")
	}
	updates["verification_status"] = models.VerificationPending

	res := g.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	return nil
}

// Review records an admin decision on a pending submission. Only a pending
// status can be decided; anything else is InvalidState.
func (g *Gate) Review(ctx context.Context, reviewer *models.User, userID uuid.UUID, decision, notes string) error {
	if reviewer == nil || !reviewer.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if decision != models.VerificationVerified && decision != models.VerificationRejected {
		return apperrors.Validation("decision must be %q or %q", models.VerificationVerified, models.VerificationRejected)
	}

	var user models.User
	if err := g.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return err
	}

	res := g.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_status = ?", userID, models.VerificationPending).
		Updates(map[string]any{
			"verification_status": decision,
			"review_notes":        notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("verification is not pending: %w", apperrors.ErrInvalidState)
	}
	return nil
}

// RequirePayoutEligible succeeds only for users whose documents have been
// verified. The order lifecycle consults it before letting payout leave
// pending.
func (g *Gate) RequirePayoutEligible(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return err
	}

	if user.VerificationStatus != models.VerificationVerified {
		return fmt.Errorf("seller identity not verified: %w", apperrors.ErrInvalidState)
	}
	return nil
}

// ListPending returns users awaiting review, oldest submissions first.
func (g *Gate) ListPending(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	query := g.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_status = ?", models.VerificationPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("updated_at asc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
