package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the snapshot of a purchased line. Product fields are
// copied at commit time so the order stays intact if the catalog entry or
// variant is later edited or deleted. VariantID is nil for base-stock lines.
type OrderLineItem struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID      uuid.UUID         `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VariantID      *uuid.UUID        `gorm:"column:variant_id;type:uuid" json:"variant_id,omitempty"`
	Name           string            `gorm:"column:name;not null" json:"name"`
	VariantName    *string           `gorm:"column:variant_name" json:"variant_name,omitempty"`
	Options        map[string]string `gorm:"column:options;type:jsonb;serializer:json" json:"options,omitempty"`
	Category       string            `gorm:"column:category;not null" json:"category"`
	Image          string            `gorm:"column:image;not null;default:''" json:"image"`
	UnitPriceCents int               `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity       int               `gorm:"column:quantity;not null" json:"quantity"`
	LineTotalCents int               `gorm:"column:line_total_cents;not null" json:"line_total_cents"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
