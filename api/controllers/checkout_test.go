package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/api/middleware"
	checkoutsvc "github.com/jewelryoclock/storefront-backend/internal/checkout"
	"github.com/jewelryoclock/storefront-backend/internal/orders"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	placeFn func(ctx context.Context, input checkoutsvc.PlaceInput) (*orders.OrderDTO, error)
}

func (s stubCheckoutService) Place(ctx context.Context, input checkoutsvc.PlaceInput) (*orders.OrderDTO, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func TestCheckoutSuccess(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	svc := stubCheckoutService{
		placeFn: func(_ context.Context, input checkoutsvc.PlaceInput) (*orders.OrderDTO, error) {
			if input.UserID != userID {
				t.Fatalf("unexpected user id: %s", input.UserID)
			}
			if input.Address != "1 Clock Tower Lane" {
				t.Fatalf("unexpected address: %s", input.Address)
			}
			return &orders.OrderDTO{ID: orderID, UserID: userID, Status: "paid", TotalCents: 4500000}, nil
		},
	}
	handler := Checkout(svc, nil)

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","address":"1 Clock Tower Lane","payment_ref":"pay_123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data orders.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("unexpected order id: %s", envelope.Data.ID)
	}
}

func TestCheckoutRequiresUserContext(t *testing.T) {
	handler := Checkout(stubCheckoutService{}, nil)

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","address":"1 Clock Tower Lane"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutRejectsMissingAddress(t *testing.T) {
	handler := Checkout(stubCheckoutService{}, nil)

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutInsufficientStockPassthrough(t *testing.T) {
	svc := stubCheckoutService{
		placeFn: func(context.Context, checkoutsvc.PlaceInput) (*orders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, `only 1 left of "Eterna Halo Diamond Ring"`)
		},
	}
	handler := Checkout(svc, nil)

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","address":"1 Clock Tower Lane"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(envelope.Error.Message, "only 1 left") {
		t.Fatalf("expected shortfall message, got %q", envelope.Error.Message)
	}
}
