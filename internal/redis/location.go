package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

const driverLocationKey = "drivers:locations"

// LocationStore maintains the driver geo index in Redis. It is a best-effort
// acceleration structure for proximity queries; the driver record in the
// durable store stays the system of record.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's position using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.Location) error {
	return s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: loc.Lng,
		Latitude:  loc.Lat,
	}).Err()
}

// FindNearbyDrivers returns driver IDs within radiusKm of the given point,
// closest first.
func (s *LocationStore) FindNearbyDrivers(ctx context.Context, center domain.Location, radiusKm float64) ([]string, error) {
	results, err := s.client.GeoRadius(ctx, driverLocationKey, center.Lng, center.Lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Name)
	}

	return ids, nil
}

// RemoveLocation removes a driver from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverLocationKey, driverID).Err()
}
