package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shipment-tracker/internal/core/cache"
	"shipment-tracker/internal/features/shipments/domain"
)

const (
	viewKeyByID = "shipment_view:id:"
	viewKeyByTN = "shipment_view:tn:"
)

// RedisViewCache implements ports.ViewCache using the cache adaptation.
// Each view is stored twice, under its shipment id and its tracking number.
type RedisViewCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisViewCache creates a new RedisViewCache.
func NewRedisViewCache(c cache.Cache, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{
		cache: c,
		ttl:   ttl,
	}
}

// Get looks the reference up as an id first, then as a tracking number.
func (r *RedisViewCache) Get(ctx context.Context, ref string) (*domain.ShipmentView, error) {
	for _, key := range []string{viewKeyByID + ref, viewKeyByTN + ref} {
		data, err := r.cache.Get(ctx, key)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get shipment view from cache: %w", err)
		}

		var view domain.ShipmentView
		if err := json.Unmarshal(data, &view); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipment view: %w", err)
		}
		return &view, nil
	}
	return nil, nil
}

// Set stores the view under both of its keys.
func (r *RedisViewCache) Set(ctx context.Context, view *domain.ShipmentView) error {
	if view == nil || view.Shipment == nil {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal shipment view: %w", err)
	}

	for _, key := range viewKeys(view.Shipment) {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			return fmt.Errorf("failed to save shipment view to cache: %w", err)
		}
	}
	return nil
}

// Invalidate removes every cached view of the shipment.
func (r *RedisViewCache) Invalidate(ctx context.Context, shipment *domain.Shipment) error {
	if shipment == nil {
		return nil
	}
	if err := r.cache.Delete(ctx, viewKeys(shipment)...); err != nil {
		return fmt.Errorf("failed to invalidate shipment view: %w", err)
	}
	return nil
}

func viewKeys(s *domain.Shipment) []string {
	return []string{viewKeyByID + s.ID, viewKeyByTN + s.TrackingNumber}
}
