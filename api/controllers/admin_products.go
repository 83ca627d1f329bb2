package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/api/responses"
	"github.com/jewelryoclock/storefront-backend/api/validators"
	"github.com/jewelryoclock/storefront-backend/internal/catalog"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
)

type productVariantRequest struct {
	Name       string            `json:"name" validate:"required"`
	PriceCents int               `json:"price_cents" validate:"min=0"`
	Stock      int               `json:"stock" validate:"min=0"`
	Options    map[string]string `json:"options"`
}

type createProductRequest struct {
	Name        string                  `json:"name" validate:"required"`
	PriceCents  int                     `json:"price_cents" validate:"required,min=1"`
	Description string                  `json:"description"`
	Category    string                  `json:"category" validate:"required"`
	Image       string                  `json:"image"`
	Tags        []string                `json:"tags"`
	Stock       int                     `json:"stock" validate:"min=0"`
	Variants    []productVariantRequest `json:"variants"`
}

type updateProductRequest struct {
	Name        *string                  `json:"name,omitempty"`
	PriceCents  *int                     `json:"price_cents,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Category    *string                  `json:"category,omitempty"`
	Image       *string                  `json:"image,omitempty"`
	Tags        *[]string                `json:"tags,omitempty"`
	Stock       *int                     `json:"stock,omitempty"`
	Variants    *[]productVariantRequest `json:"variants,omitempty"`
}

func (p createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(p.Category)
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return catalog.CreateProductInput{
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		Category:    category,
		Image:       p.Image,
		Tags:        p.Tags,
		Stock:       p.Stock,
		Variants:    toVariantInputs(p.Variants),
	}, nil
}

func (p updateProductRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		Image:       p.Image,
		Tags:        p.Tags,
		Stock:       p.Stock,
	}
	if p.Category != nil {
		category, err := enums.ParseProductCategory(*p.Category)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if p.Variants != nil {
		variants := toVariantInputs(*p.Variants)
		input.Variants = &variants
	}
	return input, nil
}

func toVariantInputs(reqs []productVariantRequest) []catalog.VariantInput {
	if len(reqs) == 0 {
		return nil
	}
	inputs := make([]catalog.VariantInput, 0, len(reqs))
	for _, v := range reqs {
		inputs = append(inputs, catalog.VariantInput{
			Name:       v.Name,
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
			Options:    v.Options,
		})
	}
	return inputs
}

// AdminCreateProduct adds a product to the live catalog.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update to a product.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product and its variants.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
