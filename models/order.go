package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Number    string          `gorm:"uniqueIndex;not null" json:"number"`
	UserID    string          `gorm:"index" json:"user_id"`
	Status    OrderStatus     `gorm:"default:pending" json:"status"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Wholesale bool            `json:"wholesale"` // which price list the totals used
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem snapshots the product at checkout time so later catalog edits do
// not rewrite order history.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint            `gorm:"index" json:"order_id"`
	ProductID    uint            `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	Quantity     int             `json:"quantity"`
	VariantColor string          `json:"variant_color"`
}
