package tests

import (
	"context"
	"testing"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

func TestSelectDriver_PicksNearest(t *testing.T) {
	pickup := domain.Location{Lat: 30.0, Lng: 31.0}
	candidates := []*domain.Driver{
		{ID: "driver-far", Status: domain.DriverStatusAvailable, Location: domain.Location{Lat: 30.2, Lng: 31.3}},
		{ID: "driver-near", Status: domain.DriverStatusAvailable, Location: domain.Location{Lat: 30.01, Lng: 31.0}},
	}

	best := service.SelectDriver(pickup, candidates)
	if best == nil || best.ID != "driver-near" {
		t.Errorf("expected driver-near, got %+v", best)
	}
}

func TestSelectDriver_SkipsBusyDrivers(t *testing.T) {
	pickup := domain.Location{Lat: 30.0, Lng: 31.0}
	candidates := []*domain.Driver{
		{ID: "driver-busy", Status: domain.DriverStatusBusy, Location: domain.Location{Lat: 30.0, Lng: 31.0}},
		{ID: "driver-free", Status: domain.DriverStatusAvailable, Location: domain.Location{Lat: 30.1, Lng: 31.1}},
	}

	best := service.SelectDriver(pickup, candidates)
	if best == nil || best.ID != "driver-free" {
		t.Errorf("expected driver-free, got %+v", best)
	}
}

func TestSelectDriver_TieBreaksOnLowestID(t *testing.T) {
	pickup := domain.Location{Lat: 30.0, Lng: 31.0}
	same := domain.Location{Lat: 30.01, Lng: 31.0}
	candidates := []*domain.Driver{
		{ID: "driver-b", Status: domain.DriverStatusAvailable, Location: same},
		{ID: "driver-a", Status: domain.DriverStatusAvailable, Location: same},
	}

	best := service.SelectDriver(pickup, candidates)
	if best == nil || best.ID != "driver-a" {
		t.Errorf("expected driver-a on tie, got %+v", best)
	}

	// Same answer regardless of candidate order.
	best = service.SelectDriver(pickup, []*domain.Driver{candidates[1], candidates[0]})
	if best == nil || best.ID != "driver-a" {
		t.Errorf("expected driver-a on reversed order, got %+v", best)
	}
}

func TestSelectDriver_NilWhenEmpty(t *testing.T) {
	if best := service.SelectDriver(domain.Location{Lat: 30.0, Lng: 31.0}, nil); best != nil {
		t.Errorf("expected nil, got %+v", best)
	}
}

func TestMatch_NoDriverAvailable(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	matching := service.NewMatchingService(driverRepo, NewMockLocationStore(), 0)

	_, err := matching.Match(context.Background(), domain.Location{Lat: 30.0, Lng: 31.0})
	if err != service.ErrNoDriverAvailable {
		t.Errorf("expected ErrNoDriverAvailable, got %v", err)
	}
}

func TestMatch_ZeroRadiusConsidersEveryone(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	matching := service.NewMatchingService(driverRepo, locationStore, 0)

	// Driver is far away and absent from the geo index: with no proximity
	// bound it must still be matchable.
	driverRepo.AddDriver(&domain.Driver{
		ID:       "driver-1",
		Status:   domain.DriverStatusAvailable,
		Location: domain.Location{Lat: 45.0, Lng: 10.0},
	})

	driver, err := matching.Match(context.Background(), domain.Location{Lat: 30.0, Lng: 31.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.ID != "driver-1" {
		t.Errorf("expected driver-1, got %s", driver.ID)
	}
}

func TestMatch_RadiusPrunesDistantDrivers(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	matching := service.NewMatchingService(driverRepo, locationStore, 5.0)

	near := domain.Location{Lat: 30.01, Lng: 31.0}
	far := domain.Location{Lat: 30.5, Lng: 31.5}

	driverRepo.AddDriver(&domain.Driver{ID: "driver-near", Status: domain.DriverStatusAvailable, Location: near})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-far", Status: domain.DriverStatusAvailable, Location: far})
	locationStore.UpdateLocation(context.Background(), "driver-near", near)
	locationStore.UpdateLocation(context.Background(), "driver-far", far)

	candidates, err := matching.FindCandidates(context.Background(), domain.Location{Lat: 30.0, Lng: 31.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "driver-near" {
		t.Errorf("expected only driver-near, got %d candidates", len(candidates))
	}
}

func TestMatch_GeoIndexOutageDegradesToFullScan(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	locationStore.FindNearbyDriversError = ErrMockTimeout
	matching := service.NewMatchingService(driverRepo, locationStore, 5.0)

	driverRepo.AddDriver(&domain.Driver{
		ID:       "driver-1",
		Status:   domain.DriverStatusAvailable,
		Location: domain.Location{Lat: 30.01, Lng: 31.0},
	})

	driver, err := matching.Match(context.Background(), domain.Location{Lat: 30.0, Lng: 31.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.ID != "driver-1" {
		t.Errorf("expected driver-1, got %s", driver.ID)
	}
}
