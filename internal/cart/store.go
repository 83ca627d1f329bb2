package cart

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
	CartKey(userID string) string
}

// Store persists per-user cart snapshots in Redis.
type Store struct {
	client slotClient
	logg   *logger.Logger
	ttl    time.Duration
}

// NewStore constructs a cart store.
func NewStore(client slotClient, logg *logger.Logger, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{client: client, logg: logg, ttl: ttl}, nil
}

// Load reads the user's cart snapshot. A missing slot yields an empty
// cart; a slot that fails to decode is reset to empty and logged, never
// surfaced to the caller.
func (s *Store) Load(ctx context.Context, userID string) ([]Line, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(userID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load cart")
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		corrupt := pkgerrors.Wrap(pkgerrors.CodeStorageCorrupt, err, "cart slot failed to decode, resetting")
		s.logg.Error(s.logg.WithUserID(ctx, userID), "cart slot corrupt", corrupt)
		if delErr := s.client.Del(ctx, s.client.CartKey(userID)); delErr != nil {
			s.logg.Error(ctx, "resetting corrupt cart slot", delErr)
		}
		return nil, nil
	}
	return lines, nil
}

// Save writes the full snapshot, refreshing the slot TTL.
func (s *Store) Save(ctx context.Context, userID string, lines []Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.client.Set(ctx, s.client.CartKey(userID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save cart")
	}
	return nil
}

// Clear deletes the slot entirely.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: clear cart")
	}
	return nil
}
