package cart

import (
	"github.com/google/uuid"
)

// Line is one cart entry. Product details are frozen at add time so the
// cart renders consistently even while the catalog changes underneath;
// checkout revalidates against authoritative rows.
type Line struct {
	CartItemID     string            `json:"cart_item_id"`
	ProductID      uuid.UUID         `json:"product_id"`
	VariantID      *uuid.UUID        `json:"variant_id,omitempty"`
	Name           string            `json:"name"`
	VariantName    *string           `json:"variant_name,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	Category       string            `json:"category"`
	Image          string            `json:"image"`
	UnitPriceCents int               `json:"unit_price_cents"`
	KnownStock     int               `json:"known_stock"`
	Quantity       int               `json:"quantity"`
}

// CartDTO is the cart payload returned to clients. TotalCents and Count
// are derived on read and never stored.
type CartDTO struct {
	Items      []Line `json:"items"`
	TotalCents int    `json:"total_cents"`
	Count      int    `json:"count"`
}

// NewCartDTO derives totals from the stored lines.
func NewCartDTO(lines []Line) *CartDTO {
	dto := &CartDTO{Items: lines}
	if dto.Items == nil {
		dto.Items = []Line{}
	}
	for _, line := range lines {
		dto.TotalCents += line.UnitPriceCents * line.Quantity
		dto.Count += line.Quantity
	}
	return dto
}

// LineID builds the cart entry key: productID alone for base lines,
// productID-variantID when a variant is selected.
func LineID(productID uuid.UUID, variantID *uuid.UUID) string {
	if variantID == nil {
		return productID.String()
	}
	return productID.String() + "-" + variantID.String()
}
