package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
)

// Service exposes per-user cart operations.
type Service interface {
	Get(ctx context.Context, userID string) (*CartDTO, error)
	AddItem(ctx context.Context, userID string, productID uuid.UUID, variantID *uuid.UUID) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID string, lineID string) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID string, lineID string, quantity int) (*CartDTO, error)
	Clear(ctx context.Context, userID string) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// service implements the cart service.
type service struct {
	store    *Store
	products productLoader
}

// NewService constructs a cart service instance.
func NewService(store *Store, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, products: products}, nil
}

// Get returns the snapshot with derived totals.
func (s *service) Get(ctx context.Context, userID string) (*CartDTO, error) {
	lines, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(lines), nil
}

// AddItem adds one unit of the product (or variant). An existing line
// already at its known stock ceiling is left untouched.
func (s *service) AddItem(ctx context.Context, userID string, productID uuid.UUID, variantID *uuid.UUID) (*CartDTO, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	var variant *models.ProductVariant
	if variantID != nil {
		variant = product.VariantByID(*variantID)
		if variant == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
	}

	lines, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	lineID := LineID(productID, variantID)
	if idx := findLine(lines, lineID); idx >= 0 {
		if lines[idx].Quantity >= lines[idx].KnownStock {
			return NewCartDTO(lines), nil
		}
		lines[idx].Quantity++
	} else {
		lines = append(lines, buildLine(lineID, product, variant))
	}

	if err := s.store.Save(ctx, userID, lines); err != nil {
		return nil, err
	}
	return NewCartDTO(lines), nil
}

// RemoveItem deletes the line unconditionally.
func (s *service) RemoveItem(ctx context.Context, userID string, lineID string) (*CartDTO, error) {
	lines, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.CartItemID != lineID {
			kept = append(kept, line)
		}
	}

	if err := s.store.Save(ctx, userID, kept); err != nil {
		return nil, err
	}
	return NewCartDTO(kept), nil
}

// SetQuantity replaces the line quantity. Below one removes the line;
// above the known stock the call is a no-op.
func (s *service) SetQuantity(ctx context.Context, userID string, lineID string, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, lineID)
	}

	lines, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findLine(lines, lineID)
	if idx < 0 {
		return NewCartDTO(lines), nil
	}
	if quantity > lines[idx].KnownStock {
		return NewCartDTO(lines), nil
	}
	lines[idx].Quantity = quantity

	if err := s.store.Save(ctx, userID, lines); err != nil {
		return nil, err
	}
	return NewCartDTO(lines), nil
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

func findLine(lines []Line, lineID string) int {
	for i := range lines {
		if lines[i].CartItemID == lineID {
			return i
		}
	}
	return -1
}

func buildLine(lineID string, product *models.Product, variant *models.ProductVariant) Line {
	line := Line{
		CartItemID:     lineID,
		ProductID:      product.ID,
		Name:           product.Name,
		Category:       product.Category.String(),
		Image:          product.Image,
		UnitPriceCents: product.PriceCents,
		KnownStock:     product.Stock,
		Quantity:       1,
	}
	if variant != nil {
		id := variant.ID
		name := variant.Name
		line.VariantID = &id
		line.VariantName = &name
		line.Options = variant.Options
		line.UnitPriceCents = variant.PriceCents
		line.KnownStock = variant.Stock
	}
	return line
}
