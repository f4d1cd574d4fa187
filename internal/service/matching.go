package service

import (
	"context"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/geo"
	"github.com/MahoudAyman/tuktuk/internal/redis"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// MatchingService selects a candidate driver for a pickup point.
//
// Selection is advisory only: it never reserves a driver. Reservation happens
// exclusively through the accept transition, because availability can change
// between selection and acceptance.
type MatchingService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	radiusKm      float64
}

// NewMatchingService creates a new MatchingService. radiusKm bounds the
// candidate search; zero means no proximity bound, so every available driver
// is considered.
func NewMatchingService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	radiusKm float64,
) *MatchingService {
	return &MatchingService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		radiusKm:      radiusKm,
	}
}

// SelectDriver returns the available driver nearest to pickup, or nil when
// the candidate set is empty. Ties break toward the lowest driver ID so the
// selection is deterministic.
//
// Candidate locations may be stale; freshness is the location reporter's
// concern, not enforced here.
func SelectDriver(pickup domain.Location, candidates []*domain.Driver) *domain.Driver {
	var best *domain.Driver
	bestDist := 0.0

	for _, d := range candidates {
		if d.Status != domain.DriverStatusAvailable {
			continue
		}
		dist := geo.Distance(pickup, d.Location)
		switch {
		case best == nil, dist < bestDist:
			best, bestDist = d, dist
		case dist == bestDist && d.ID < best.ID:
			best = d
		}
	}

	return best
}

// FindCandidates returns the available drivers eligible for a pickup point.
// With a proximity radius configured, the redis geo index prunes the set; the
// driver records themselves always come from the repository, which remains
// the system of record for availability.
func (s *MatchingService) FindCandidates(ctx context.Context, pickup domain.Location) ([]*domain.Driver, error) {
	available, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if s.radiusKm <= 0 || s.locationStore == nil {
		return available, nil
	}

	nearbyIDs, err := s.locationStore.FindNearbyDrivers(ctx, pickup, s.radiusKm)
	if err != nil {
		// Geo index outages degrade to the unbounded scan.
		return available, nil
	}

	nearby := make(map[string]bool, len(nearbyIDs))
	for _, id := range nearbyIDs {
		nearby[id] = true
	}

	candidates := make([]*domain.Driver, 0, len(available))
	for _, d := range available {
		if nearby[d.ID] {
			candidates = append(candidates, d)
		}
	}

	return candidates, nil
}

// Match finds an advisory driver for a pickup point. Returns
// ErrNoDriverAvailable when no candidate exists.
func (s *MatchingService) Match(ctx context.Context, pickup domain.Location) (*domain.Driver, error) {
	candidates, err := s.FindCandidates(ctx, pickup)
	if err != nil {
		return nil, err
	}

	driver := SelectDriver(pickup, candidates)
	if driver == nil {
		return nil, ErrNoDriverAvailable
	}

	return driver, nil
}
