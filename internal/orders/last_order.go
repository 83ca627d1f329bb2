package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
	"github.com/jewelryoclock/storefront-backend/pkg/redis"
)

type slotClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LastOrderKey(userID string) string
}

// LastOrderStore mirrors each user's most recent order into a short
// lived Redis slot so the confirmation view survives a reload.
type LastOrderStore struct {
	client slotClient
	logg   *logger.Logger
	ttl    time.Duration
}

// NewLastOrderStore constructs a last-order store.
func NewLastOrderStore(client slotClient, logg *logger.Logger, ttl time.Duration) (*LastOrderStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LastOrderStore{client: client, logg: logg, ttl: ttl}, nil
}

// Save overwrites the user's slot with the order payload.
func (s *LastOrderStore) Save(ctx context.Context, userID string, order *OrderDTO) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode last order")
	}
	if err := s.client.Set(ctx, s.client.LastOrderKey(userID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save last order")
	}
	return nil
}

// Load reads the slot. A missing slot yields nil; a slot that fails to
// decode is reset and logged, never surfaced.
func (s *LastOrderStore) Load(ctx context.Context, userID string) (*OrderDTO, error) {
	raw, err := s.client.Get(ctx, s.client.LastOrderKey(userID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load last order")
	}

	var order OrderDTO
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		corrupt := pkgerrors.Wrap(pkgerrors.CodeStorageCorrupt, err, "last-order slot failed to decode, resetting")
		s.logg.Error(s.logg.WithUserID(ctx, userID), "last-order slot corrupt", corrupt)
		if delErr := s.client.Del(ctx, s.client.LastOrderKey(userID)); delErr != nil {
			s.logg.Error(ctx, "resetting corrupt last-order slot", delErr)
		}
		return nil, nil
	}
	return &order, nil
}
