package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
)

// Service exposes order tracking operations.
type Service interface {
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Advance(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	LastOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
}

// service implements the order tracker.
type service struct {
	repo      *Repository
	dbClient  *db.Client
	lastOrder *LastOrderStore
	logg      *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo *Repository, dbClient *db.Client, lastOrder *LastOrderStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if lastOrder == nil {
		return nil, fmt.Errorf("last-order store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, lastOrder: lastOrder, logg: logg}, nil
}

// Get loads one order owned by the user.
func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// Advance moves the order to the requested status and appends the
// matching history entry in the same transaction. Only forward moves
// are allowed; cancellation is possible from any non-terminal status.
func (s *service) Advance(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", status)
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		if !order.Status.CanTransitionTo(status) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"order cannot move from %s to %s", order.Status, status)
		}

		if err := txRepo.UpdateStatus(ctx, orderID, status.String()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		event := &models.OrderStatusEvent{
			ID:         uuid.New(),
			OrderID:    orderID,
			Status:     status,
			RecordedAt: time.Now().UTC(),
		}
		if err := txRepo.AppendStatusEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append status event")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
	}
	return NewOrderDTO(order), nil
}

// ListForUser returns the user's orders, most recent first.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return NewOrderListDTO(orders), nil
}

// ListAll returns every order for the admin view, most recent first.
func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return NewOrderListDTO(orders), nil
}

// LastOrder returns the user's most recent order from the Redis slot,
// or nil when none is mirrored.
func (s *service) LastOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	return s.lastOrder.Load(ctx, userID.String())
}
