package repository

import (
	"context"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// RideRepository defines the persistence operations for rides.
//
// Claim, AdvanceStatus and UpdateDestination are conditional updates: they
// commit only when the stored record matches the expected prior state, and
// return ErrConflict otherwise. This compare-and-set is the sole concurrency
// primitive for ride mutation; there is no read-then-write path.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ActiveByPassenger retrieves the passenger's unfinished ride, if any.
	ActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error)

	// ActiveByDriver retrieves the driver's unfinished ride, if any.
	ActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error)

	// ListPendingUnassigned retrieves the pending pool: rides with no
	// assigned driver, visible to every available driver until claimed.
	ListPendingUnassigned(ctx context.Context) ([]*domain.Ride, error)

	// Claim atomically commits pending -> accepted for the given driver.
	// It succeeds only while the ride is pending and either unassigned or
	// already advisorily assigned to the caller. Exactly one concurrent
	// claim wins; losers get ErrConflict.
	Claim(ctx context.Context, rideID, driverID string) error

	// AdvanceStatus atomically commits from -> to, guarded on the ride
	// currently holding status from with the given driver assigned.
	AdvanceStatus(ctx context.Context, rideID, driverID string, from, to domain.RideStatus) error

	// UpdateDestination replaces the destination while the ride is still
	// pending. Price and distance are never touched.
	UpdateDestination(ctx context.Context, rideID string, dest domain.Location) error
}
