package repository

import (
	"context"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAvailable retrieves all drivers currently marked available.
	GetAvailable(ctx context.Context) ([]*domain.Driver, error)

	// UpdateStatus updates a driver's availability.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateLocation updates a driver's last-known position. Location and
	// availability are owned by different writers and never conflict.
	UpdateLocation(ctx context.Context, id string, loc domain.Location) error

	// RecordCompletedRide increments the driver's cumulative ride count
	// and returns them to the available pool.
	RecordCompletedRide(ctx context.Context, id string) error
}
