package service

import (
	"context"
	"log"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/observability"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// LifecycleService governs ride status transitions and who may trigger them.
//
// Every transition commits through a conditional update against the record
// store; the store's compare-and-set is the only concurrency control. The
// service never mutates a ride it has read, it asks the store to commit a
// specific edge and reports how that went.
type LifecycleService struct {
	rideRepo   repository.RideRepository
	driverRepo repository.DriverRepository
	publisher  feed.Publisher
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	publisher feed.Publisher,
) *LifecycleService {
	return &LifecycleService{
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		publisher:  publisher,
	}
}

// Accept attempts the pending -> accepted transition on behalf of a driver.
// Exactly one concurrent accept succeeds for a given ride; every other
// caller gets ErrAlreadyClaimed and must retract its incoming-ride prompt.
func (s *LifecycleService) Accept(ctx context.Context, driverID, rideID string) (*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	prior, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	err = s.rideRepo.Claim(ctx, rideID, driverID)
	switch {
	case err == nil:
	case err == repository.ErrConflict:
		observability.AcceptConflicts.Inc()
		return nil, ErrAlreadyClaimed
	default:
		return nil, err
	}

	// The claim is committed; the winner leaves the available pool.
	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusBusy); err != nil {
		log.Printf("lifecycle: mark driver %s busy: %v", driverID, err)
	}

	// Re-read after the commit so the snapshot carries anything that
	// landed between the prior read and the claim, a destination change
	// for instance.
	updated, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		log.Printf("lifecycle: re-read ride %s after claim: %v", rideID, err)
		fallback := *prior
		fallback.DriverID = driverID
		fallback.Status = domain.RideStatusAccepted
		updated = &fallback
	}

	observability.AcceptWins.Inc()
	s.publishRide(prior, updated)
	s.publishDriverSet(ctx)

	return updated, nil
}

// Advance commits the next forward transition (accepted -> on_the_way or
// on_the_way -> finished) on behalf of the assigned driver. Any other edge,
// or any other caller, is ErrInvalidTransition and leaves the ride unchanged.
func (s *LifecycleService) Advance(ctx context.Context, driverID, rideID string, target domain.RideStatus) (*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if !domain.ValidStatus(target) || target == domain.RideStatusPending {
		return nil, ErrInvalidTransition
	}
	// pending -> accepted has its own entry point with claim semantics.
	if target == domain.RideStatusAccepted {
		return nil, ErrInvalidTransition
	}

	prior, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(prior.Status, target) {
		return nil, ErrInvalidTransition
	}
	if prior.DriverID != driverID {
		return nil, ErrInvalidTransition
	}

	err = s.rideRepo.AdvanceStatus(ctx, rideID, driverID, prior.Status, target)
	switch {
	case err == nil:
	case err == repository.ErrConflict:
		// The ride moved underneath us; the requested edge no longer exists.
		return nil, ErrInvalidTransition
	default:
		return nil, err
	}

	updated := *prior
	updated.Status = target

	if target == domain.RideStatusFinished {
		if err := s.driverRepo.RecordCompletedRide(ctx, driverID); err != nil {
			log.Printf("lifecycle: record completed ride for driver %s: %v", driverID, err)
		}
		observability.RidesFinished.Inc()
		defer s.publishDriverSet(ctx)
	}

	s.publishRide(prior, &updated)

	return &updated, nil
}

// ChangeDestination updates the destination of a passenger's ride. Honored
// only while the ride is still pending; once a driver is on board the prior
// destination stays authoritative. Price and distance are frozen at creation
// and are not recomputed.
func (s *LifecycleService) ChangeDestination(ctx context.Context, passengerID, rideID string, dest domain.Location) (*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if !dest.Valid() {
		return nil, ErrInvalidDestinationLocation
	}

	prior, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if prior.PassengerID != passengerID {
		return nil, ErrNotRideOwner
	}
	if prior.Status != domain.RideStatusPending {
		return nil, ErrInvalidTransition
	}

	err = s.rideRepo.UpdateDestination(ctx, rideID, dest)
	switch {
	case err == nil:
	case err == repository.ErrConflict:
		return nil, ErrInvalidTransition
	default:
		return nil, err
	}

	updated := *prior
	updated.Destination = dest

	s.publishRide(prior, &updated)

	return &updated, nil
}

func (s *LifecycleService) publishRide(before, after *domain.Ride) {
	if s.publisher == nil {
		return
	}
	observability.FeedEvents.WithLabelValues("ride").Inc()
	s.publisher.PublishRide(feed.RideEvent{Old: before, New: after})
}

func (s *LifecycleService) publishDriverSet(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	available, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		log.Printf("lifecycle: load available drivers: %v", err)
		return
	}
	observability.DriversAvailable.Set(float64(len(available)))
	observability.FeedEvents.WithLabelValues("drivers").Inc()
	s.publisher.PublishDrivers(feed.DriverSetEvent{Drivers: available})
}
