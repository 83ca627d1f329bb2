package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jewelryoclock/storefront-backend/api/middleware"
	"github.com/jewelryoclock/storefront-backend/internal/orders"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
)

func TestOrderListScopedToCaller(t *testing.T) {
	userID := uuid.New()
	svc := stubOrdersService{
		listForUserFn: func(_ context.Context, uid uuid.UUID) ([]orders.OrderDTO, error) {
			if uid != userID {
				t.Fatalf("unexpected user id: %s", uid)
			}
			return []orders.OrderDTO{{ID: uuid.New(), UserID: uid}}, nil
		},
	}
	handler := OrderList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrderDetailNotFoundForStranger(t *testing.T) {
	svc := stubOrdersService{
		getFn: func(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	handler := OrderDetail(svc, nil)

	orderID := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	req = withRouteParam(req, "orderId", orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestOrderLastEmptySlotReturnsNull(t *testing.T) {
	handler := OrderLast(stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/last", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data *orders.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data != nil {
		t.Fatalf("expected null data, got %+v", envelope.Data)
	}
}
