package models

// User roles.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Document verification states. Reviews only ever move
// unverified -> pending -> verified|rejected; a new document
// submission re-opens verified/rejected back to pending.
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
	VerificationRejected   = "rejected"
)

// User represents a marketplace account. Email and WhatsApp number are each
// optional but globally unique when present. Only admin accounts carry a
// password hash, which keeps them off the code-based login paths.
type User struct {
	BaseModel
	Username         string  `gorm:"uniqueIndex" json:"username"`
	Email            *string `gorm:"uniqueIndex" json:"email,omitempty"`
	WhatsAppNumber   *string `gorm:"column:whatsapp_number;uniqueIndex" json:"whatsapp_number,omitempty"`
	PasswordHash     string  `json:"-"`
	Role             string  `gorm:"index" json:"role"`
	IsMerchant       bool    `json:"is_merchant"`
	EmailVerified    bool    `json:"email_verified"`
	WhatsAppVerified bool    `gorm:"column:whatsapp_verified" json:"whatsapp_verified"`

	VerificationStatus string `gorm:"index;default:unverified" json:"verification_status"`
	ReviewNotes        string `json:"review_notes,omitempty"`

	// Identity document references. Seller slots are filled during seller
	// registration, buyer slots during buyer checkout; each is set
	// independently.
	SellerIDScan   string `gorm:"column:seller_id_scan" json:"seller_id_scan,omitempty"`
	SellerFaceScan string `json:"seller_face_scan,omitempty"`
	BuyerIDScan    string `gorm:"column:buyer_id_scan" json:"buyer_id_scan,omitempty"`
	BuyerFaceScan  string `json:"buyer_face_scan,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
