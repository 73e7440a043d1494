package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/verification"
)

// Lifecycle is the state machine governing an order from creation through
// buyer confirmation to payout release.
type Lifecycle struct {
	db   *gorm.DB
	gate *verification.Gate
	log  zerolog.Logger
}

// NewLifecycle constructs the order lifecycle controller.
func NewLifecycle(db *gorm.DB, gate *verification.Gate, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{db: db, gate: gate, log: log}
}

// Create places an order for a product. Initial state is
// (pending, pending, none, none); the seller comes from the product row.
func (l *Lifecycle) Create(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	var product models.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	if !product.Active {
		return nil, apperrors.Validation("product is no longer available")
	}
	if product.SellerID == buyerID {
		return nil, apperrors.Validation("cannot order your own product")
	}

	order := models.Order{
		OrderNumber: generateOrderNumber(),
		BuyerID:     buyerID,
		SellerID:    product.SellerID,
		ProductID:   product.ID,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
		TotalAmount: product.UnitPrice * float64(quantity),
		PlacedAt:    time.Now(),

		Status:            models.OrderPending,
		DeliveryStatus:    models.DeliveryPending,
		BuyerConfirmation: models.ConfirmationNone,
		PayoutStatus:      models.PayoutNone,
	}

	if err := l.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	l.log.Info().
		Str("order", order.OrderNumber).
		Str("buyer_id", buyerID.String()).
		Str("seller_id", order.SellerID.String()).
		Msg("order placed")

	return &order, nil
}

// BuyerConfirm applies the buyer's one-time received/rejected decision. The
// four lifecycle fields move in a single conditional UPDATE keyed on
// buyer_confirmation still being "none", so a double submit (or a racing
// duplicate) loses with InvalidState and payout effects are never applied
// twice.
func (l *Lifecycle) BuyerConfirm(ctx context.Context, orderID, callerID uuid.UUID, decision string) (*models.Order, error) {
	if decision != models.ConfirmationReceived && decision != models.ConfirmationRejected {
		return nil, apperrors.Validation("confirmation must be %q or %q", models.ConfirmationReceived, models.ConfirmationRejected)
	}

	var order models.Order
	if err := l.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if order.BuyerID != callerID {
		return nil, apperrors.ErrForbidden
	}

	updates := map[string]any{
		"buyer_confirmation": models.ConfirmationReceived,
		"delivery_status":    models.DeliveryDelivered,
		"status":             models.OrderCompleted,
		"payout_status":      models.PayoutPending,
	}
	if decision == models.ConfirmationRejected {
		updates = map[string]any{
			"buyer_confirmation": models.ConfirmationRejected,
			"delivery_status":    models.DeliveryRejected,
			"status":             models.OrderRejected,
			"payout_status":      models.PayoutCancelled,
		}
	}

	res := l.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND buyer_confirmation = ?", orderID, models.ConfirmationNone).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order already confirmed: %w", apperrors.ErrInvalidState)
	}

	order.BuyerConfirmation = updates["buyer_confirmation"].(string)
	order.DeliveryStatus = updates["delivery_status"].(string)
	order.Status = updates["status"].(string)
	order.PayoutStatus = updates["payout_status"].(string)

	l.log.Info().
		Str("order", order.OrderNumber).
		Str("decision", decision).
		Msg("buyer confirmation recorded")

	return &order, nil
}

// SetDeliveryStatus is the seller's simple progress write.
func (l *Lifecycle) SetDeliveryStatus(ctx context.Context, orderID, callerID uuid.UUID, status string) (*models.Order, error) {
	if status != models.DeliveryInTransit && status != models.DeliveryDelivered {
		return nil, apperrors.Validation("delivery status must be %q or %q", models.DeliveryInTransit, models.DeliveryDelivered)
	}

	var order models.Order
	if err := l.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if order.SellerID != callerID {
		return nil, apperrors.ErrForbidden
	}

	if err := l.db.WithContext(ctx).Model(&order).Update("delivery_status", status).Error; err != nil {
		return nil, err
	}
	order.DeliveryStatus = status
	return &order, nil
}

// Confirm is the admin's acknowledgment write: pending -> confirmed.
func (l *Lifecycle) Confirm(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := l.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	res := l.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderPending).
		Update("status", models.OrderConfirmed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order is not pending: %w", apperrors.ErrInvalidState)
	}

	order.Status = models.OrderConfirmed
	return &order, nil
}

// ReleasePayout moves payout from pending to processed. The seller must have
// passed document verification first; an unverified seller keeps the payout
// parked in pending.
func (l *Lifecycle) ReleasePayout(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := l.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %w", apperrors.ErrNotFound)
		}
		return nil, err
	}

	if order.PayoutStatus != models.PayoutPending {
		return nil, fmt.Errorf("payout is not pending: %w", apperrors.ErrInvalidState)
	}

	if err := l.gate.RequirePayoutEligible(ctx, order.SellerID); err != nil {
		return nil, err
	}

	res := l.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payout_status = ?", orderID, models.PayoutPending).
		Update("payout_status", models.PayoutProcessed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("payout is not pending: %w", apperrors.ErrInvalidState)
	}

	order.PayoutStatus = models.PayoutProcessed

	l.log.Info().
		Str("order", order.OrderNumber).
		Str("seller_id", order.SellerID.String()).
		Float64("amount", order.TotalAmount).
		Msg("payout released")

	return &order, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
