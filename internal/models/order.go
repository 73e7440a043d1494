package models

import (
	"time"

	"github.com/google/uuid"
)

// Order status values.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCompleted = "completed"
	OrderRejected  = "rejected"
	OrderCancelled = "cancelled"
)

// Delivery status values.
const (
	DeliveryPending   = "pending"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
	DeliveryRejected  = "rejected"
)

// Buyer confirmation values. A confirmation is a one-time event; once it
// leaves "none" it never changes again.
const (
	ConfirmationNone     = "none"
	ConfirmationReceived = "received"
	ConfirmationRejected = "rejected"
)

// Payout status values. An order is terminally closed once payout reaches
// processed or cancelled.
const (
	PayoutNone      = "none"
	PayoutPending   = "pending"
	PayoutProcessed = "processed"
	PayoutCancelled = "cancelled"
)

// Order is a single buyer/seller/product transaction.
type Order struct {
	BaseModel
	OrderNumber string    `gorm:"uniqueIndex" json:"order_number"`
	BuyerID     uuid.UUID `gorm:"type:uuid;index" json:"buyer_id"`
	Buyer       *User     `json:"buyer,omitempty"`
	SellerID    uuid.UUID `gorm:"type:uuid;index" json:"seller_id"`
	Seller      *User     `json:"seller,omitempty"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product     *Product  `json:"product,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalAmount float64   `json:"total_amount"`
	PlacedAt    time.Time `json:"placed_at"`

	Status            string `gorm:"index;default:pending" json:"status"`
	DeliveryStatus    string `gorm:"default:pending" json:"delivery_status"`
	BuyerConfirmation string `gorm:"default:none" json:"buyer_confirmation"`
	PayoutStatus      string `gorm:"index;default:none" json:"payout_status"`
}
