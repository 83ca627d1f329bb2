package cart

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
	"github.com/jewelryoclock/storefront-backend/pkg/redis"
)

type fakeSlotClient struct {
	slots map[string]string
}

func newFakeSlotClient() *fakeSlotClient {
	return &fakeSlotClient{slots: map[string]string{}}
}

func (f *fakeSlotClient) Get(_ context.Context, key string) (string, error) {
	value, ok := f.slots[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return value, nil
}

func (f *fakeSlotClient) Set(_ context.Context, key string, value any, _ time.Duration) error {
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

func (f *fakeSlotClient) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.slots, key)
	}
	return nil
}

func (f *fakeSlotClient) CartKey(userID string) string {
	return "joc:cart:" + userID
}

type fakeProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProductLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func newTestCart(t *testing.T) (Service, *fakeSlotClient, *fakeProductLoader) {
	t.Helper()
	client := newFakeSlotClient()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	store, err := NewStore(client, logg, time.Hour)
	require.NoError(t, err)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(store, loader)
	require.NoError(t, err)
	return svc, client, loader
}

func fixtureProduct(loader *fakeProductLoader, stock int) *models.Product {
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Pearl Choker",
		PriceCents: 550000,
		Category:   enums.ProductCategoryNecklaces,
		Stock:      stock,
	}
	loader.products[product.ID] = product
	return product
}

func fixtureVariantProduct(loader *fakeProductLoader) (*models.Product, *models.ProductVariant) {
	variant := models.ProductVariant{
		ID:         uuid.New(),
		Name:       "Gold Strap",
		PriceCents: 6500000,
		Stock:      2,
		Options:    map[string]string{"Strap": "Gold"},
	}
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Butterfly Watch",
		PriceCents: 6500000,
		Category:   enums.ProductCategoryWatches,
		Stock:      3,
		Variants:   []models.ProductVariant{variant},
	}
	loader.products[product.ID] = product
	return product, &product.Variants[0]
}

func TestAddItemCreatesAndIncrementsLines(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 3)

	cart, err := svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.ID.String(), cart.Items[0].CartItemID)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 550000, cart.TotalCents)

	cart, err = svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, 1100000, cart.TotalCents)
}

func TestAddItemStopsSilentlyAtStockCeiling(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 2)

	for i := 0; i < 5; i++ {
		_, err := svc.AddItem(ctx, "u1", product.ID, nil)
		require.NoError(t, err)
	}

	cart, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItemVariantUsesVariantPriceAndStock(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product, variant := fixtureVariantProduct(loader)

	cart, err := svc.AddItem(ctx, "u1", product.ID, &variant.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	line := cart.Items[0]
	assert.Equal(t, product.ID.String()+"-"+variant.ID.String(), line.CartItemID)
	assert.Equal(t, variant.PriceCents, line.UnitPriceCents)
	assert.Equal(t, variant.Stock, line.KnownStock)

	// base line and variant line coexist
	cart, err = svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemUnknownProductAndVariant(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 3)

	_, err := svc.AddItem(ctx, "u1", uuid.New(), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	missingVariant := uuid.New()
	_, err = svc.AddItem(ctx, "u1", product.ID, &missingVariant)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSetQuantitySemantics(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 2)
	lineID := product.ID.String()

	_, err := svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)

	// above known stock is a no-op
	cart, err := svc.SetQuantity(ctx, "u1", lineID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = svc.SetQuantity(ctx, "u1", lineID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// below one removes the line
	cart, err = svc.SetQuantity(ctx, "u1", lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, client, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 5)

	_, err := svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "u1", product.ID.String())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "u1"))

	_, ok := client.slots[client.CartKey("u1")]
	assert.False(t, ok, "slot deleted on clear")
}

func TestCorruptSlotResetsToEmpty(t *testing.T) {
	svc, client, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 5)

	client.slots[client.CartKey("u1")] = "{not json"

	cart, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, ok := client.slots[client.CartKey("u1")]
	assert.False(t, ok, "corrupt slot deleted")

	// cart usable again after reset
	cart, err = svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _, loader := newTestCart(t)
	ctx := context.Background()
	product := fixtureProduct(loader, 5)

	_, err := svc.AddItem(ctx, "u1", product.ID, nil)
	require.NoError(t, err)

	cart, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestStoreRoundTripPreservesEveryLineField(t *testing.T) {
	client := newFakeSlotClient()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	store, err := NewStore(client, logg, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	variantID := uuid.New()
	variantName := "18k Gold / Size 7"
	lines := []Line{
		{
			CartItemID:     uuid.NewString(),
			ProductID:      uuid.New(),
			VariantID:      &variantID,
			Name:           "Eternity Band",
			VariantName:    &variantName,
			Options:        map[string]string{"Metal": "18k Gold", "Size": "7"},
			Category:       "rings",
			Image:          "https://cdn.example.com/eternity-band.jpg",
			UnitPriceCents: 12900000,
			KnownStock:     4,
			Quantity:       2,
		},
		{
			CartItemID:     uuid.NewString(),
			ProductID:      uuid.New(),
			Name:           "Pearl Choker",
			Category:       "necklaces",
			Image:          "https://cdn.example.com/pearl-choker.jpg",
			UnitPriceCents: 550000,
			KnownStock:     9,
			Quantity:       1,
		},
	}

	require.NoError(t, store.Save(ctx, "user-1", lines))
	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, lines, loaded)
}
