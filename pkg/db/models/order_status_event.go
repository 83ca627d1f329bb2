package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/pkg/enums"
)

// OrderStatusEvent is one entry in an order's append-only status history.
// Rows are never updated or deleted; RecordedAt is non-decreasing per order.
type OrderStatusEvent struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	Status     enums.OrderStatus `gorm:"column:status;not null" json:"status"`
	RecordedAt time.Time         `gorm:"column:recorded_at;not null" json:"recorded_at"`
}
