package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/jewelryoclock/storefront-backend/internal/cart"
	"github.com/jewelryoclock/storefront-backend/internal/catalog"
	"github.com/jewelryoclock/storefront-backend/internal/orders"
	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
	"github.com/jewelryoclock/storefront-backend/pkg/metrics"
)

// paymentLabel tags placed-order counters. PaymentRef is an opaque
// external reference, so the metric carries a single neutral bucket.
const paymentLabel = "external"

// Service turns a cart snapshot into a committed order.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*orders.OrderDTO, error)
}

// PlaceInput holds the validated checkout payload.
type PlaceInput struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	Address    string
	PaymentRef string
}

type changePublisher interface {
	PublishCatalogChange(ctx context.Context, reason string) error
}

// service implements the order engine.
type service struct {
	cartStore   *cart.Store
	catalogRepo *catalog.Repository
	ordersRepo  *orders.Repository
	lastOrder   *orders.LastOrderStore
	dbClient    *db.Client
	publisher   changePublisher
	checkout    *metrics.CheckoutMetrics
	logg        *logger.Logger
	maxAttempts int
}

// NewService constructs an order engine instance.
func NewService(
	cartStore *cart.Store,
	catalogRepo *catalog.Repository,
	ordersRepo *orders.Repository,
	lastOrder *orders.LastOrderStore,
	dbClient *db.Client,
	publisher changePublisher,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	maxAttempts int,
) (Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if lastOrder == nil {
		return nil, fmt.Errorf("last-order store required")
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
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &service{
		cartStore:   cartStore,
		catalogRepo: catalogRepo,
		ordersRepo:  ordersRepo,
		lastOrder:   lastOrder,
		dbClient:    dbClient,
		publisher:   publisher,
		checkout:    checkoutMetrics,
		logg:        logg,
		maxAttempts: maxAttempts,
	}, nil
}

// Place validates the user's cart against authoritative stock and, when
// every line fits, commits the order and the stock decrements in one
// transaction. A failed placement writes nothing and leaves the cart
// intact.
func (s *service) Place(ctx context.Context, input PlaceInput) (*orders.OrderDTO, error) {
	started := time.Now()
	userID := input.UserID.String()
	ctx = s.logg.WithUserID(ctx, userID)

	lines, err := s.cartStore.Load(ctx, userID)
	if err != nil {
		s.checkout.ObserveDuration("error", time.Since(started))
		return nil, err
	}
	if len(lines) == 0 {
		s.checkout.IncRejected("empty_cart")
		s.checkout.ObserveDuration("rejected", time.Since(started))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var placed *models.Order
	for attempt := 1; ; attempt++ {
		placed, err = s.placeOnce(ctx, input, lines)
		if err == nil {
			break
		}
		if attempt < s.maxAttempts && isRetryableTxError(err) {
			s.checkout.IncRetry()
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "order placement conflicted, retrying")
			continue
		}
		if typed := pkgerrors.As(err); typed != nil {
			s.checkout.IncRejected(string(typed.Code()))
			s.checkout.ObserveDuration("rejected", time.Since(started))
			return nil, err
		}
		s.checkout.ObserveDuration("error", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	dto := orders.NewOrderDTO(placed)
	ctx = s.logg.WithOrderID(ctx, placed.ID.String())

	// Post-commit effects are best-effort; the order already exists.
	if err := s.lastOrder.Save(ctx, userID, dto); err != nil {
		s.logg.Error(ctx, "mirroring last order", err)
	}
	if err := s.cartStore.Clear(ctx, userID); err != nil {
		s.logg.Error(ctx, "clearing cart after checkout", err)
	}
	if err := s.publisher.PublishCatalogChange(ctx, "order_placed"); err != nil {
		s.logg.Warn(ctx, "catalog change publish failed")
	}

	s.checkout.IncPlaced(paymentLabel)
	s.checkout.ObserveDuration("placed", time.Since(started))
	s.logg.Info(s.logg.WithField(ctx, "total_cents", placed.TotalCents), "order placed")
	return dto, nil
}

// placeOnce runs the read-validate-commit cycle in a single transaction.
func (s *service) placeOnce(ctx context.Context, input PlaceInput, lines []cart.Line) (*models.Order, error) {
	var placed *models.Order

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := s.catalogRepo.WithTx(tx)

		// Read phase: lock every product row the cart touches. Ordered
		// by id so concurrent placements acquire locks consistently.
		productIDs := distinctProductIDs(lines)
		products := make(map[uuid.UUID]*models.Product, len(productIDs))
		for _, id := range productIDs {
			product, err := txCatalog.FindByIDForUpdate(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					products[id] = nil
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock product")
			}
			products[id] = product
		}

		// Validate phase: every line must fit before anything is written.
		for _, line := range lines {
			if err := validateLine(line, products[line.ProductID]); err != nil {
				return err
			}
		}

		// Commit phase: freeze the order and decrement stock together.
		now := time.Now().UTC()
		order := buildOrder(input, lines, now)
		if _, err := s.ordersRepo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		for _, line := range lines {
			product := products[line.ProductID]
			if line.VariantID != nil {
				variant := product.VariantByID(*line.VariantID)
				if err := txCatalog.UpdateVariantStock(ctx, variant.ID, variant.Stock-line.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement variant stock")
				}
				variant.Stock -= line.Quantity
				continue
			}
			if err := txCatalog.UpdateStock(ctx, product.ID, product.Stock-line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement product stock")
			}
			product.Stock -= line.Quantity
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func validateLine(line cart.Line, product *models.Product) error {
	if product == nil {
		return pkgerrors.Newf(pkgerrors.CodeProductUnavailable,
			"%q is no longer available", line.Name)
	}
	if line.VariantID != nil {
		variant := product.VariantByID(*line.VariantID)
		if variant == nil {
			return pkgerrors.Newf(pkgerrors.CodeVariantUnavailable,
				"%q (%s) is no longer available", line.Name, variantLabel(line))
		}
		if variant.Stock < line.Quantity {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientStock,
				"only %d left of %q (%s)", variant.Stock, line.Name, variant.Name)
		}
		return nil
	}
	if product.Stock < line.Quantity {
		return pkgerrors.Newf(pkgerrors.CodeInsufficientStock,
			"only %d left of %q", product.Stock, line.Name)
	}
	return nil
}

func variantLabel(line cart.Line) string {
	if line.VariantName != nil {
		return *line.VariantName
	}
	return line.VariantID.String()
}

// buildOrder freezes the cart snapshot into order rows. Prices come from
// the snapshot, not the authoritative rows read in the same transaction.
func buildOrder(input PlaceInput, lines []cart.Line, now time.Time) *models.Order {
	orderID := uuid.New()
	order := &models.Order{
		ID:              orderID,
		UserID:          input.UserID,
		CustomerName:    input.Name,
		Email:           input.Email,
		ShippingAddress: input.Address,
		PaymentRef:      input.PaymentRef,
		Status:          enums.OrderStatusPaid,
		StatusHistory: []models.OrderStatusEvent{{
			ID:         uuid.New(),
			OrderID:    orderID,
			Status:     enums.OrderStatusPaid,
			RecordedAt: now,
		}},
	}
	for _, line := range lines {
		lineTotal := line.UnitPriceCents * line.Quantity
		order.TotalCents += lineTotal
		order.Items = append(order.Items, models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Name:           line.Name,
			VariantName:    line.VariantName,
			Options:        line.Options,
			Category:       line.Category,
			Image:          line.Image,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: lineTotal,
		})
	}
	return order
}

func distinctProductIDs(lines []cart.Line) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// isRetryableTxError reports Postgres serialization and deadlock
// failures, which resolve on a clean retry. The pgx driver surfaces
// *pgconn.PgError; lib/pq connections surface *pq.Error.
func isRetryableTxError(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "40001" || pgxErr.Code == "40P01"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
