package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/pkg/enums"
)

// Order is a confirmed purchase. Items are frozen snapshots taken at commit
// time and never re-read from the catalog; StatusHistory is append-only and
// its last entry always matches Status.
type Order struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CustomerName    string             `gorm:"column:customer_name;not null" json:"customer_name"`
	Email           string             `gorm:"column:email;not null" json:"email"`
	ShippingAddress string             `gorm:"column:shipping_address;not null" json:"shipping_address"`
	PaymentRef      string             `gorm:"column:payment_ref;not null;default:''" json:"payment_ref"`
	TotalCents      int                `gorm:"column:total_cents;not null" json:"total_cents"`
	Status          enums.OrderStatus  `gorm:"column:status;not null;default:'paid'" json:"status"`
	Items           []OrderLineItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	StatusHistory   []OrderStatusEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
