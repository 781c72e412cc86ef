package models

import "time"

// Cart belongs to exactly one identity: an authenticated user (UserID set) or
// an anonymous visitor (SessionID set). The unique indexes enforce one cart
// per user and one cart per anonymous session.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *string    `gorm:"uniqueIndex" json:"user_id"`
	SessionID *string    `gorm:"uniqueIndex" json:"-"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine is one product entry in a cart. Line identity is the tuple
// (cart, product, variant color); a line without a variant stores the empty
// string, so "no variant" is its own identity distinct from any color. The
// composite unique index makes duplicate identities impossible even when two
// adds race past the existence check.
type CartLine struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID       uint      `gorm:"uniqueIndex:idx_cart_line_identity,priority:1" json:"cart_id"`
	ProductID    uint      `gorm:"uniqueIndex:idx_cart_line_identity,priority:2" json:"product_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	VariantColor string    `gorm:"uniqueIndex:idx_cart_line_identity,priority:3" json:"variant_color"`
	VariantHex   string    `json:"variant_hex"` // display only, never part of identity
	Product      Product   `gorm:"foreignKey:ProductID" json:"-"`
	AddedAt      time.Time `json:"added_at"`
}
