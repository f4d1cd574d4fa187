package repository

import (
	"context"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// UpdateLocation updates a passenger's last-known position.
	UpdateLocation(ctx context.Context, id string, loc domain.Location) error
}
