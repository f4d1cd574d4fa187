package service

import (
	"context"
	"log"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/observability"
	"github.com/MahoudAyman/tuktuk/internal/redis"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// DriverService handles driver-side inputs: periodic location reports and
// availability toggling.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	publisher     feed.Publisher
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	publisher feed.Publisher,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		publisher:     publisher,
	}
}

// UpdateLocation records a driver's position. Location reports are periodic,
// best-effort input; they never block or conflict with ride transitions, the
// two touch disjoint fields owned by different writers.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, loc domain.Location) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !loc.Valid() {
		return ErrInvalidLocation
	}

	if err := s.driverRepo.UpdateLocation(ctx, driverID, loc); err != nil {
		return err
	}

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, driverID, loc); err != nil {
			log.Printf("driver: update geo index for %s: %v", driverID, err)
		}
	}

	s.publishDriverSet(ctx)
	return nil
}

// SetAvailability flips a driver between available and busy. Going busy also
// drops the driver from the geo index so matching stops considering them.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, available bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	status := domain.DriverStatusBusy
	if available {
		status = domain.DriverStatusAvailable
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if s.locationStore != nil && !available {
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			log.Printf("driver: remove %s from geo index: %v", driverID, err)
		}
	}

	s.publishDriverSet(ctx)
	return nil
}

func (s *DriverService) publishDriverSet(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	available, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		log.Printf("driver: load available drivers: %v", err)
		return
	}
	observability.DriversAvailable.Set(float64(len(available)))
	observability.FeedEvents.WithLabelValues("drivers").Inc()
	s.publisher.PublishDrivers(feed.DriverSetEvent{Drivers: available})
}
