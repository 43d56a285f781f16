package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetops/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// Ride status changes during the lifecycle, keep the window short.
	RideCacheTTL = 10 * time.Second
	// Overview snapshots tolerate brief staleness on the dashboard.
	StatsCacheTTL = 30 * time.Second
)

// Key prefixes
const (
	rideCachePrefix  = "cache:ride:"
	statsOverviewKey = "cache:stats:overview"
)

// GetRide retrieves a ride from cache. Returns (nil, nil) on a miss.
func (s *CacheStore) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	data, err := s.client.Get(ctx, rideCachePrefix+rideID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var ride domain.Ride
	if err := json.Unmarshal(data, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// SetRide stores a ride in cache.
func (s *CacheStore) SetRide(ctx context.Context, ride *domain.Ride) error {
	data, err := json.Marshal(ride)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rideCachePrefix+ride.ID, data, RideCacheTTL).Err()
}

// InvalidateRide drops a ride from cache after a write.
func (s *CacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, rideCachePrefix+rideID).Err()
}

// GetStatsOverview retrieves the cached system snapshot. Returns
// (nil, nil) on a miss.
func (s *CacheStore) GetStatsOverview(ctx context.Context) (*domain.Stats, error) {
	data, err := s.client.Get(ctx, statsOverviewKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStatsOverview stores the system snapshot.
func (s *CacheStore) SetStatsOverview(ctx context.Context, stats *domain.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsOverviewKey, data, StatsCacheTTL).Err()
}
