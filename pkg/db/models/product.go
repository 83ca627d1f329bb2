package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jewelryoclock/storefront-backend/pkg/enums"
)

// Product represents a catalog listing. Stock is the base count and is
// ignored when variants are present; each variant then carries its own
// price and stock.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string                `gorm:"column:name;not null" json:"name"`
	PriceCents  int                   `gorm:"column:price_cents;not null" json:"price_cents"`
	Description string                `gorm:"column:description;not null;default:''" json:"description"`
	Category    enums.ProductCategory `gorm:"column:category;not null" json:"category"`
	Image       string                `gorm:"column:image;not null;default:''" json:"image"`
	Tags        pq.StringArray        `gorm:"column:tags;type:text[]" json:"tags,omitempty"`
	Stock       int                   `gorm:"column:stock;not null;default:0" json:"stock"`
	Variants    []ProductVariant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// HasVariants reports whether stock and price are tracked per variant.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// VariantByID returns the matching variant, or nil.
func (p *Product) VariantByID(id uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}
