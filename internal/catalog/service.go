package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
)

// Service exposes catalog read and admin management operations.
type Service interface {
	ListProducts(ctx context.Context) (*CatalogDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	SeedIfEmpty(ctx context.Context) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	PriceCents  int
	Description string
	Category    enums.ProductCategory
	Image       string
	Tags        []string
	Stock       int
	Variants    []VariantInput
}

// VariantInput defines one purchasable variation.
type VariantInput struct {
	Name       string
	PriceCents int
	Stock      int
	Options    map[string]string
}

// UpdateProductInput holds optional mutation values for a product.
// A nil Variants pointer leaves existing variants untouched; a pointer
// to an empty slice removes them all.
type UpdateProductInput struct {
	Name        *string
	PriceCents  *int
	Description *string
	Category    *enums.ProductCategory
	Image       *string
	Tags        *[]string
	Stock       *int
	Variants    *[]VariantInput
}

type changePublisher interface {
	PublishCatalogChange(ctx context.Context, reason string) error
}

// service implements the catalog service.
type service struct {
	repo      *Repository
	dbClient  *db.Client
	publisher changePublisher
	logg      *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, publisher changePublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, publisher: publisher, logg: logg}, nil
}

// ListProducts returns the live catalog. When the database is unreachable
// it degrades to the bundled snapshot so browsing keeps working.
func (s *service) ListProducts(ctx context.Context) (*CatalogDTO, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logg.Error(ctx, "catalog read failed, serving offline snapshot", err)
		return NewCatalogDTO(SeedProducts(), true), nil
	}
	return NewCatalogDTO(products, false), nil
}

// GetProduct loads a single product with variants.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// CreateProduct inserts a new listing with its variants.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Name, input.PriceCents, input.Stock, input.Category); err != nil {
		return nil, err
	}
	if err := validateVariants(input.Variants); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		PriceCents:  input.PriceCents,
		Description: input.Description,
		Category:    input.Category,
		Image:       input.Image,
		Tags:        input.Tags,
		Stock:       input.Stock,
		Variants:    buildVariants(input.Variants),
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.publishChange(ctx, "product_created")
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies the provided changes to an existing listing.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown category %q", *input.Category)
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Variants != nil {
		if err := validateVariants(*input.Variants); err != nil {
			return nil, err
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		applyUpdate(product, input)

		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.publishChange(ctx, "product_updated")
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes the listing and its variants.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.publishChange(ctx, "product_deleted")
	return nil
}

// SeedIfEmpty loads the launch catalog when no products exist yet.
func (s *service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.CountProducts(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	if count > 0 {
		return nil
	}

	seed := SeedProducts()
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i := range seed {
			if _, err := txRepo.CreateProduct(ctx, &seed[i]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert seed product")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed catalog")
	}

	s.logg.Info(s.logg.WithField(ctx, "products", len(seed)), "seeded launch catalog")
	return nil
}

func (s *service) publishChange(ctx context.Context, reason string) {
	if err := s.publisher.PublishCatalogChange(ctx, reason); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "catalog change publish failed")
	}
}

func validateProductFields(name string, priceCents, stock int, category enums.ProductCategory) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if priceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if !category.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown category %q", category)
	}
	return nil
}

// validateVariants rejects duplicate option combinations so that a size 7
// platinum ring can only be listed once.
func validateVariants(variants []VariantInput) error {
	seen := map[string]string{}
	for _, variant := range variants {
		if strings.TrimSpace(variant.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
		}
		if variant.PriceCents < 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "variant %q: price_cents cannot be negative", variant.Name)
		}
		if variant.Stock < 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "variant %q: stock cannot be negative", variant.Name)
		}
		key := optionsKey(variant.Options)
		if prev, ok := seen[key]; ok {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "variants %q and %q share the same option combination", prev, variant.Name)
		}
		seen[key] = variant.Name
	}
	return nil
}

func optionsKey(options map[string]string) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(options[k])
		b.WriteByte(';')
	}
	return b.String()
}

func buildVariants(inputs []VariantInput) []models.ProductVariant {
	if len(inputs) == 0 {
		return nil
	}
	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		variants = append(variants, models.ProductVariant{
			ID:         uuid.New(),
			Name:       strings.TrimSpace(in.Name),
			PriceCents: in.PriceCents,
			Stock:      in.Stock,
			Options:    in.Options,
		})
	}
	return variants
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Variants != nil {
		product.Variants = rebuildVariants(product.Variants, *input.Variants)
	}
}

// rebuildVariants keeps the ID of any variant whose option combination
// already exists on the product, so cart lines that reference it stay
// valid across admin edits. New combinations get fresh IDs.
func rebuildVariants(existing []models.ProductVariant, inputs []VariantInput) []models.ProductVariant {
	if len(inputs) == 0 {
		return nil
	}
	byOptions := make(map[string]uuid.UUID, len(existing))
	for _, variant := range existing {
		byOptions[optionsKey(variant.Options)] = variant.ID
	}
	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		id, ok := byOptions[optionsKey(in.Options)]
		if !ok {
			id = uuid.New()
		}
		variants = append(variants, models.ProductVariant{
			ID:         id,
			Name:       strings.TrimSpace(in.Name),
			PriceCents: in.PriceCents,
			Stock:      in.Stock,
			Options:    in.Options,
		})
	}
	return variants
}
