package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rubro values partition the catalog into the two co-branded storefronts.
const (
	RubroDarccuir = "darccuir"
	RubroYatay    = "yatay"
)

type Product struct {
	ID             uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU            string              `gorm:"uniqueIndex;not null" json:"sku"`
	Name           string              `gorm:"not null" json:"name"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
	PriceWholesale decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price_wholesale"`
	Stock          int                 `json:"stock"`
	CoverImages    []string            `gorm:"serializer:json" json:"cover_images"`
	Rubro          string              `gorm:"index;not null" json:"rubro"` // darccuir | yatay
	Subrubros      []Subrubro          `gorm:"many2many:product_subrubros;" json:"subrubros"`
	Variants       []Variant           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	Active         bool                `gorm:"default:true" json:"active"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

// Variant is a color option of a product. Stock lives on the product, not
// here: inventory is not tracked per color.
type Variant struct {
	ID        uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint     `gorm:"index" json:"product_id"`
	ColorName string   `gorm:"not null" json:"color_name"`
	ColorHex  string   `json:"color_hex"`
	Images    []string `gorm:"serializer:json" json:"images"`
}

// VariantByColor returns the variant whose color name matches, or nil.
func (p *Product) VariantByColor(color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ColorName == color {
			return &p.Variants[i]
		}
	}
	return nil
}
