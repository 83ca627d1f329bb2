package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
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
	pkgredis "github.com/jewelryoclock/storefront-backend/pkg/redis"
)

type fakeSlots struct {
	mu    sync.Mutex
	slots map[string]string
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{slots: map[string]string{}}
}

func (f *fakeSlots) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.slots[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return value, nil
}

func (f *fakeSlots) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.slots[key] = string(v)
	case string:
		f.slots[key] = v
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		f.slots[key] = string(payload)
	}
	return nil
}

func (f *fakeSlots) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.slots, key)
	}
	return nil
}

func (f *fakeSlots) CartKey(userID string) string      { return "joc:cart:" + userID }
func (f *fakeSlots) LastOrderKey(userID string) string { return "joc:last_order:" + userID }

type fakePublisher struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakePublisher) PublishCatalogChange(_ context.Context, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	return nil
}

type engineFixture struct {
	svc       Service
	conn      *gorm.DB
	slots     *fakeSlots
	cartStore *cart.Store
	catalog   *catalog.Repository
	orders    *orders.Repository
	publisher *fakePublisher
	registry  *prometheus.Registry
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{}, &models.ProductVariant{},
		&models.Order{}, &models.OrderLineItem{}, &models.OrderStatusEvent{},
	))

	slots := newFakeSlots()
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})

	cartStore, err := cart.NewStore(slots, logg, time.Hour)
	require.NoError(t, err)
	lastOrder, err := orders.NewLastOrderStore(slots, logg, time.Hour)
	require.NoError(t, err)

	catalogRepo := catalog.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	publisher := &fakePublisher{}

	registry := prometheus.NewRegistry()
	svc, err := NewService(
		cartStore, catalogRepo, ordersRepo, lastOrder,
		db.FromGorm(conn), publisher,
		metrics.NewCheckoutMetrics(registry), logg, 3,
	)
	require.NoError(t, err)

	return &engineFixture{
		svc:       svc,
		conn:      conn,
		slots:     slots,
		cartStore: cartStore,
		catalog:   catalogRepo,
		orders:    ordersRepo,
		publisher: publisher,
		registry:  registry,
	}
}

func (f *engineFixture) mustCreateProduct(t *testing.T, stock int, variants ...models.ProductVariant) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Halo Ring",
		PriceCents: 4500000,
		Category:   enums.ProductCategoryRings,
		Stock:      stock,
		Variants:   variants,
	}
	for i := range product.Variants {
		product.Variants[i].ProductID = product.ID
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func (f *engineFixture) mustSaveCart(t *testing.T, userID string, lines []cart.Line) {
	t.Helper()
	require.NoError(t, f.cartStore.Save(context.Background(), userID, lines))
}

func baseLine(product *models.Product, qty int) cart.Line {
	return cart.Line{
		CartItemID:     product.ID.String(),
		ProductID:      product.ID,
		Name:           product.Name,
		Category:       product.Category.String(),
		UnitPriceCents: product.PriceCents,
		KnownStock:     product.Stock,
		Quantity:       qty,
	}
}

func variantLine(product *models.Product, variant *models.ProductVariant, qty int) cart.Line {
	id := variant.ID
	name := variant.Name
	return cart.Line{
		CartItemID:     product.ID.String() + "-" + variant.ID.String(),
		ProductID:      product.ID,
		VariantID:      &id,
		Name:           product.Name,
		VariantName:    &name,
		Options:        variant.Options,
		Category:       product.Category.String(),
		UnitPriceCents: variant.PriceCents,
		KnownStock:     variant.Stock,
		Quantity:       qty,
	}
}

func placeInput(userID uuid.UUID) PlaceInput {
	return PlaceInput{
		UserID:     userID,
		Name:       "Ada Shopper",
		Email:      "ada@example.com",
		Address:    "1 Jewel Lane",
		PaymentRef: "pay_123",
	}
}

func TestPlaceCommitsOrderAndDecrementsStock(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	variant := models.ProductVariant{
		ID: uuid.New(), Name: "Size 7", PriceCents: 4200000, Stock: 3,
		Options: map[string]string{"Size": "7"},
	}
	product := f.mustCreateProduct(t, 10, variant)
	plain := f.mustCreateProduct(t, 5)

	f.mustSaveCart(t, userID.String(), []cart.Line{
		variantLine(product, &product.Variants[0], 2),
		baseLine(plain, 1),
	})

	order, err := f.svc.Place(ctx, placeInput(userID))
	require.NoError(t, err)

	assert.Equal(t, "paid", order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "paid", order.StatusHistory[0].Status)
	assert.Equal(t, 2*4200000+4500000, order.TotalCents)
	assert.Len(t, order.Items, 2)

	// variant line decrements only the variant row
	reloaded, err := f.catalog.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Stock)
	assert.Equal(t, 1, reloaded.VariantByID(variant.ID).Stock)

	reloadedPlain, err := f.catalog.FindByID(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloadedPlain.Stock)

	// cart cleared, last order mirrored, feed notified
	lines, err := f.cartStore.Load(ctx, userID.String())
	require.NoError(t, err)
	assert.Empty(t, lines)
	_, mirrored := f.slots.slots[f.slots.LastOrderKey(userID.String())]
	assert.True(t, mirrored)
	assert.Equal(t, []string{"order_placed"}, f.publisher.reasons)
}

func TestPlaceEmptyCartRejected(t *testing.T) {
	f := newEngine(t)

	_, err := f.svc.Place(context.Background(), placeInput(uuid.New()))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestPlaceInsufficientStockAbortsWithoutWrites(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.mustCreateProduct(t, 1)
	line := baseLine(product, 2)
	line.KnownStock = 5 // stale snapshot from before stock dropped
	f.mustSaveCart(t, userID.String(), []cart.Line{line})

	_, err := f.svc.Place(ctx, placeInput(userID))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "only 1 left")
	assert.Contains(t, err.Error(), product.Name)

	// zero writes: no orders, stock untouched, cart intact
	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	reloaded, err := f.catalog.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)

	lines, err := f.cartStore.Load(ctx, userID.String())
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestPlaceFailureIsRepeatableUntilStockChanges(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.mustCreateProduct(t, 1)
	line := baseLine(product, 2)
	f.mustSaveCart(t, userID.String(), []cart.Line{line})

	for i := 0; i < 3; i++ {
		_, err := f.svc.Place(ctx, placeInput(userID))
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
	}

	require.NoError(t, f.catalog.UpdateStock(ctx, product.ID, 2))

	_, err := f.svc.Place(ctx, placeInput(userID))
	require.NoError(t, err)
}

func TestPlaceMissingProductRejected(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.mustCreateProduct(t, 3)
	f.mustSaveCart(t, userID.String(), []cart.Line{baseLine(product, 1)})
	require.NoError(t, f.catalog.DeleteProduct(ctx, product.ID))

	_, err := f.svc.Place(ctx, placeInput(userID))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeProductUnavailable))
	assert.Contains(t, err.Error(), product.Name)
}

func TestPlaceMissingVariantRejected(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	variant := models.ProductVariant{
		ID: uuid.New(), Name: "Size 7", PriceCents: 4200000, Stock: 3,
	}
	product := f.mustCreateProduct(t, 10, variant)
	f.mustSaveCart(t, userID.String(), []cart.Line{variantLine(product, &product.Variants[0], 1)})

	require.NoError(t, f.conn.Delete(&models.ProductVariant{}, "id = ?", variant.ID).Error)

	_, err := f.svc.Place(ctx, placeInput(userID))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVariantUnavailable))
}

func TestLastUnitGoesToExactlyOneBuyer(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	product := f.mustCreateProduct(t, 1)
	first := uuid.New()
	second := uuid.New()
	f.mustSaveCart(t, first.String(), []cart.Line{baseLine(product, 1)})
	f.mustSaveCart(t, second.String(), []cart.Line{baseLine(product, 1)})

	_, err := f.svc.Place(ctx, placeInput(first))
	require.NoError(t, err)

	_, err = f.svc.Place(ctx, placeInput(second))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 1, orderCount)
}

func TestPlacedOrderSnapshotSurvivesCatalogEdits(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.mustCreateProduct(t, 5)
	f.mustSaveCart(t, userID.String(), []cart.Line{baseLine(product, 1)})

	placed, err := f.svc.Place(ctx, placeInput(userID))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{"name": "Renamed", "price_cents": 1}).Error)

	reloaded, err := f.orders.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, product.Name, reloaded.Items[0].Name)
	assert.Equal(t, product.PriceCents, reloaded.Items[0].UnitPriceCents)
	assert.Equal(t, product.PriceCents, reloaded.TotalCents)
}

func TestRetryableTxErrorDetection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pgx serialization failure", fmt.Errorf("place order: %w", &pgconn.PgError{Code: "40001"}), true},
		{"pgx deadlock", fmt.Errorf("place order: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"pq serialization failure", fmt.Errorf("place order: %w", &pq.Error{Code: "40001"}), true},
		{"pq deadlock", fmt.Errorf("place order: %w", &pq.Error{Code: "40P01"}), true},
		{"pgx unique violation", fmt.Errorf("place order: %w", &pgconn.PgError{Code: "23505"}), false},
		{"plain error", fmt.Errorf("place order: connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableTxError(tt.err))
		})
	}
}

func TestPlaceCountsUnderNeutralPaymentLabel(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.mustCreateProduct(t, 3)
	f.mustSaveCart(t, userID.String(), []cart.Line{baseLine(product, 1)})

	input := placeInput(userID)
	input.PaymentRef = "tok_opaque_ref_991"
	_, err := f.svc.Place(ctx, input)
	require.NoError(t, err)

	mfs, err := f.registry.Gather()
	require.NoError(t, err)
	assert.Equal(t, 1.0, placedCounterValue(t, mfs, "external"))
}

func placedCounterValue(t *testing.T, mfs []*dto.MetricFamily, payment string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != "checkout_orders_placed" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "payment" && label.GetValue() == payment {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("no checkout_orders_placed sample with payment=%q", payment)
	return 0
}
