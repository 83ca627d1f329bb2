package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	PriceCents  int          `json:"price_cents"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags"`
	Stock       int          `json:"stock"`
	Variants    []VariantDTO `json:"variants,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// VariantDTO represents one purchasable variation of a product.
type VariantDTO struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	PriceCents int               `json:"price_cents"`
	Stock      int               `json:"stock"`
	Options    map[string]string `json:"options"`
}

// CatalogDTO is the full catalog response. Offline reports that the
// payload came from the bundled snapshot rather than the database.
type CatalogDTO struct {
	Products []ProductDTO `json:"products"`
	Offline  bool         `json:"offline"`
}

// NewProductDTO maps a product row to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		PriceCents:  product.PriceCents,
		Description: product.Description,
		Category:    product.Category.String(),
		Image:       product.Image,
		Tags:        []string(product.Tags),
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	for _, variant := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			ID:         variant.ID,
			Name:       variant.Name,
			PriceCents: variant.PriceCents,
			Stock:      variant.Stock,
			Options:    variant.Options,
		})
	}
	return dto
}

// NewCatalogDTO maps product rows to the catalog response.
func NewCatalogDTO(products []models.Product, offline bool) *CatalogDTO {
	dto := &CatalogDTO{Products: make([]ProductDTO, 0, len(products)), Offline: offline}
	for i := range products {
		dto.Products = append(dto.Products, *NewProductDTO(&products[i]))
	}
	return dto
}
