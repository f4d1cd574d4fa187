package tests

import (
	"context"
	"testing"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

func TestDriverUpdateLocation_UpdatesRepoAndGeoIndex(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	publisher := NewCapturePublisher()
	driverService := service.NewDriverService(driverRepo, locationStore, publisher)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	loc := domain.Location{Lat: 30.02, Lng: 31.01}
	if err := driverService.UpdateLocation(context.Background(), "driver-1", loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := driverRepo.GetDriver("driver-1").Location; got != loc {
		t.Errorf("expected repo location %+v, got %+v", loc, got)
	}
	if !locationStore.HasLocation("driver-1") {
		t.Error("expected driver in geo index")
	}
	if publisher.DriverEventCount() == 0 {
		t.Error("expected a driver-set snapshot after the report")
	}
}

func TestDriverUpdateLocation_ValidatesInput(t *testing.T) {
	driverService := service.NewDriverService(NewMockDriverRepository(), NewMockLocationStore(), nil)

	if err := driverService.UpdateLocation(context.Background(), "", domain.Location{Lat: 30.0, Lng: 31.0}); err != service.ErrInvalidDriverID {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
	if err := driverService.UpdateLocation(context.Background(), "driver-1", domain.Location{Lat: 100.0, Lng: 31.0}); err != service.ErrInvalidLocation {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestDriverUpdateLocation_SurvivesGeoIndexFailure(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	locationStore.UpdateLocationError = ErrMockTimeout
	driverService := service.NewDriverService(driverRepo, locationStore, nil)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	loc := domain.Location{Lat: 30.02, Lng: 31.01}
	// The repository is the system of record; a geo index outage does not
	// fail the report.
	if err := driverService.UpdateLocation(context.Background(), "driver-1", loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Location; got != loc {
		t.Errorf("expected repo location %+v, got %+v", loc, got)
	}
}

func TestSetAvailability_BusyLeavesGeoIndex(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	driverService := service.NewDriverService(driverRepo, locationStore, nil)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	locationStore.UpdateLocation(context.Background(), "driver-1", domain.Location{Lat: 30.0, Lng: 31.0})

	if err := driverService.SetAvailability(context.Background(), "driver-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := driverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusBusy {
		t.Errorf("expected busy, got %s", got)
	}
	if locationStore.HasLocation("driver-1") {
		t.Error("expected driver removed from geo index")
	}
}

func TestSetAvailability_BackToAvailable(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	driverService := service.NewDriverService(driverRepo, NewMockLocationStore(), nil)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusBusy})

	if err := driverService.SetAvailability(context.Background(), "driver-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusAvailable {
		t.Errorf("expected available, got %s", got)
	}
}
