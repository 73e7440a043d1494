package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/middleware"
	"github.com/example/campusmart/internal/models"
	"github.com/example/campusmart/internal/orders"
	"github.com/example/campusmart/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db        *gorm.DB
	lifecycle *orders.Lifecycle
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, lifecycle *orders.Lifecycle) *OrderHandler {
	return &OrderHandler{db: db, lifecycle: lifecycle}
}

type createOrderRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrder allows an authenticated buyer to place an order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return apperrors.Validation("invalid product id")
	}

	order, err := h.lifecycle.Create(c.Context(), userID, productID, req.Quantity)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// ListOrders returns the caller's orders, as buyer or as seller.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.Context()).Model(&models.Order{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var list []models.Order
	if err := query.Preload("Product").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&list).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order visible to its buyer or seller.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var order models.Order
	if err := h.db.WithContext(c.Context()).Preload("Product").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %w", apperrors.ErrNotFound)
		}
		return err
	}

	if order.BuyerID != userID && order.SellerID != userID {
		return apperrors.ErrForbidden
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type buyerConfirmationRequest struct {
	Confirmation string `json:"confirmation"`
}

// BuyerConfirmation records the buyer's one-time received/rejected decision.
func (h *OrderHandler) BuyerConfirmation(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var req buyerConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	order, err := h.lifecycle.BuyerConfirm(c.Context(), id, userID, req.Confirmation)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type deliveryStatusRequest struct {
	DeliveryStatus string `json:"deliveryStatus"`
}

// DeliveryStatus lets the seller record delivery progress.
func (h *OrderHandler) DeliveryStatus(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var req deliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	order, err := h.lifecycle.SetDeliveryStatus(c.Context(), id, userID, req.DeliveryStatus)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListAllOrders returns every order for the admin view.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.Context()).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if payout := c.Query("payout_status"); payout != "" {
		query = query.Where("payout_status = ?", payout)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var list []models.Order
	if err := query.Preload("Product").Preload("Buyer").Preload("Seller").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&list).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ConfirmOrder is the admin acknowledgment: pending -> confirmed.
func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	order, err := h.lifecycle.Confirm(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ReleasePayout settles a completed order with a verified seller.
func (h *OrderHandler) ReleasePayout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	order, err := h.lifecycle.ReleasePayout(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
