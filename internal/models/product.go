package models

import "github.com/google/uuid"

// Product is the minimal listing record the settlement core needs: orders
// resolve their seller and unit price through it. Full catalog management
// lives outside this service.
type Product struct {
	BaseModel
	SellerID  uuid.UUID `gorm:"type:uuid;index" json:"seller_id"`
	Seller    *User     `json:"seller,omitempty"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Active    bool      `gorm:"default:true" json:"active"`
}
