package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a purchasable configuration of a product, e.g. a specific
// size/material combination, with its own price and stock. Options map an
// option key to the chosen value ("Size" -> "7"); the combination must be
// unique within the product.
type ProductVariant struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Name       string            `gorm:"column:name;not null" json:"name"`
	PriceCents int               `gorm:"column:price_cents;not null" json:"price_cents"`
	Stock      int               `gorm:"column:stock;not null;default:0" json:"stock"`
	Options    map[string]string `gorm:"column:options;type:jsonb;serializer:json" json:"options"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
