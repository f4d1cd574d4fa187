package redis

import (
	"context"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// LocationStoreInterface defines the interface for the driver geo index.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, loc domain.Location) error
	FindNearbyDrivers(ctx context.Context, center domain.Location, radiusKm float64) ([]string, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

var _ LocationStoreInterface = (*LocationStore)(nil)
