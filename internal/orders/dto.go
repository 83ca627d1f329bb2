package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
)

// OrderDTO represents the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	CustomerName    string           `json:"customer_name"`
	Email           string           `json:"email"`
	ShippingAddress string           `json:"shipping_address"`
	PaymentRef      string           `json:"payment_ref"`
	TotalCents      int              `json:"total_cents"`
	Status          string           `json:"status"`
	Items           []LineItemDTO    `json:"items"`
	StatusHistory   []StatusEventDTO `json:"status_history"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// LineItemDTO is one frozen purchase line.
type LineItemDTO struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      uuid.UUID         `json:"product_id"`
	VariantID      *uuid.UUID        `json:"variant_id,omitempty"`
	Name           string            `json:"name"`
	VariantName    *string           `json:"variant_name,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	Category       string            `json:"category"`
	Image          string            `json:"image"`
	UnitPriceCents int               `json:"unit_price_cents"`
	Quantity       int               `json:"quantity"`
	LineTotalCents int               `json:"line_total_cents"`
}

// StatusEventDTO is one history entry.
type StatusEventDTO struct {
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewOrderDTO maps an order row to its API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		CustomerName:    order.CustomerName,
		Email:           order.Email,
		ShippingAddress: order.ShippingAddress,
		PaymentRef:      order.PaymentRef,
		TotalCents:      order.TotalCents,
		Status:          order.Status.String(),
		Items:           make([]LineItemDTO, 0, len(order.Items)),
		StatusHistory:   make([]StatusEventDTO, 0, len(order.StatusHistory)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			VariantName:    item.VariantName,
			Options:        item.Options,
			Category:       item.Category,
			Image:          item.Image,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}
	for _, event := range order.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, StatusEventDTO{
			Status:     event.Status.String(),
			RecordedAt: event.RecordedAt,
		})
	}
	return dto
}

// NewOrderListDTO maps order rows preserving their order.
func NewOrderListDTO(orders []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *NewOrderDTO(&orders[i]))
	}
	return dtos
}
