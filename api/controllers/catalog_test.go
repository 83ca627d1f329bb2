package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/internal/catalog"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
)

type stubCatalogService struct {
	listFn   func(ctx context.Context) (*catalog.CatalogDTO, error)
	getFn    func(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error)
	createFn func(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error)
	updateFn func(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error)
	deleteFn func(ctx context.Context, productID uuid.UUID) error
}

func (s stubCatalogService) ListProducts(ctx context.Context) (*catalog.CatalogDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return &catalog.CatalogDTO{Products: []catalog.ProductDTO{}}, nil
}

func (s stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, productID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s stubCatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, productID, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s stubCatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s stubCatalogService) SeedIfEmpty(context.Context) error { return nil }

func TestCatalogListMarksOffline(t *testing.T) {
	svc := stubCatalogService{
		listFn: func(context.Context) (*catalog.CatalogDTO, error) {
			return &catalog.CatalogDTO{
				Products: []catalog.ProductDTO{{ID: uuid.New(), Name: "Eterna Halo Diamond Ring"}},
				Offline:  true,
			}, nil
		},
	}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data catalog.CatalogDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Offline {
		t.Fatal("expected offline flag to survive serialization")
	}
	if len(envelope.Data.Products) != 1 {
		t.Fatalf("expected 1 product got %d", len(envelope.Data.Products))
	}
}

func TestCatalogDetailRejectsBadID(t *testing.T) {
	handler := CatalogDetail(stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/nope", nil)
	req = withRouteParam(req, "productId", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCatalogDetailNotFound(t *testing.T) {
	handler := CatalogDetail(stubCatalogService{}, nil)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/"+id, nil)
	req = withRouteParam(req, "productId", id)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
