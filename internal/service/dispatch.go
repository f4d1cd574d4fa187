package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/geo"
	"github.com/MahoudAyman/tuktuk/internal/observability"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// MatchingInterface defines the matching contract consumed by the
// dispatcher. This interface allows for testing with mock implementations.
type MatchingInterface interface {
	Match(ctx context.Context, pickup domain.Location) (*domain.Driver, error)
}

// Ensure MatchingService implements MatchingInterface.
var _ MatchingInterface = (*MatchingService)(nil)

// DispatchService turns ride requests into committed rides and keeps them
// externally observable through the change feed.
type DispatchService struct {
	rideRepo      repository.RideRepository
	passengerRepo repository.PassengerRepository
	driverRepo    repository.DriverRepository
	matching      MatchingInterface
	fareCfg       geo.FareConfig
	publisher     feed.Publisher
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	rideRepo repository.RideRepository,
	passengerRepo repository.PassengerRepository,
	driverRepo repository.DriverRepository,
	matching MatchingInterface,
	fareCfg geo.FareConfig,
	publisher feed.Publisher,
) *DispatchService {
	return &DispatchService{
		rideRepo:      rideRepo,
		passengerRepo: passengerRepo,
		driverRepo:    driverRepo,
		matching:      matching,
		fareCfg:       fareCfg,
		publisher:     publisher,
	}
}

// RequestRideInput contains the parameters for requesting a ride.
type RequestRideInput struct {
	PassengerID string
	Pickup      domain.Location
	Destination domain.Location
}

// RequestRideResult contains the created ride and whether an advisory driver
// was attached to it.
type RequestRideResult struct {
	Ride           *domain.Ride
	DriverAssigned bool
}

// RequestRide creates a new ride in pending status.
//
// Distance and price are computed here, once, and never change afterwards.
// Matching is advisory: when a candidate exists their ID is pre-assigned on
// the pending ride, but the driver is only reserved by a successful accept.
// When no candidate exists the ride is created unassigned (pool mode) and
// stays visible to every available driver through the pool feed.
func (s *DispatchService) RequestRide(ctx context.Context, input RequestRideInput) (*RequestRideResult, error) {
	if input.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if !input.Pickup.Valid() {
		return nil, ErrInvalidPickupLocation
	}
	if !input.Destination.Valid() {
		return nil, ErrInvalidDestinationLocation
	}

	if _, err := s.passengerRepo.GetByID(ctx, input.PassengerID); err != nil {
		return nil, err
	}

	distanceKm := geo.Distance(input.Pickup, input.Destination)
	price := geo.Fare(distanceKm, s.fareCfg)

	driverID := ""
	driver, err := s.matching.Match(ctx, input.Pickup)
	switch {
	case err == nil:
		driverID = driver.ID
	case errors.Is(err, ErrNoDriverAvailable):
		observability.RidesPooled.Inc()
	default:
		return nil, err
	}

	ride := &domain.Ride{
		ID:          uuid.New().String(),
		PassengerID: input.PassengerID,
		DriverID:    driverID,
		Pickup:      input.Pickup,
		Destination: input.Destination,
		Status:      domain.RideStatusPending,
		Price:       price,
		DistanceKm:  distanceKm,
		CreatedAt:   time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	observability.RidesRequested.Inc()
	if s.publisher != nil {
		observability.FeedEvents.WithLabelValues("ride").Inc()
		s.publisher.PublishRide(feed.RideEvent{Old: nil, New: ride})
	}

	return &RequestRideResult{Ride: ride, DriverAssigned: driverID != ""}, nil
}

// GetRide retrieves a ride by ID.
func (s *DispatchService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ActiveRideFor returns the unfinished ride the actor is part of, whether
// they are its passenger or its driver. A nil ride with nil error means the
// actor has no active ride.
func (s *DispatchService) ActiveRideFor(ctx context.Context, actorID string) (*domain.Ride, error) {
	if actorID == "" {
		return nil, ErrInvalidPassengerID
	}

	ride, err := s.rideRepo.ActiveByPassenger(ctx, actorID)
	if err == nil {
		return ride, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ride, err = s.rideRepo.ActiveByDriver(ctx, actorID)
	if err == nil {
		return ride, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// PendingPool returns the rides waiting for a driver, oldest first.
func (s *DispatchService) PendingPool(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.ListPendingUnassigned(ctx)
}

// NearbyAvailableDrivers returns the drivers currently in the available
// pool. The passenger map renders these directly.
func (s *DispatchService) NearbyAvailableDrivers(ctx context.Context) ([]*domain.Driver, error) {
	drivers, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}
	observability.DriversAvailable.Set(float64(len(drivers)))
	return drivers, nil
}
