package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

func newLifecycleService(
	rideRepo *MockRideRepository,
	driverRepo *MockDriverRepository,
	publisher feed.Publisher,
) *service.LifecycleService {
	return service.NewLifecycleService(rideRepo, driverRepo, publisher)
}

func TestAccept_ExactlyOneWinner(t *testing.T) {
	const contenders = 16

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	lifecycle := newLifecycleService(rideRepo, driverRepo, NewCapturePublisher())

	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusPending,
	})
	for i := 0; i < contenders; i++ {
		driverRepo.AddDriver(&domain.Driver{
			ID:     fmt.Sprintf("driver-%d", i),
			Status: domain.DriverStatusAvailable,
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lifecycle.Accept(context.Background(), fmt.Sprintf("driver-%d", i), "ride-1")
		}(i)
	}
	wg.Wait()

	wins := 0
	winnerID := ""
	for i, err := range errs {
		switch err {
		case nil:
			wins++
			winnerID = fmt.Sprintf("driver-%d", i)
		case service.ErrAlreadyClaimed:
		default:
			t.Errorf("driver-%d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning accept, got %d", wins)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected accepted status, got %s", ride.Status)
	}
	if ride.DriverID != winnerID {
		t.Errorf("expected ride assigned to %s, got %s", winnerID, ride.DriverID)
	}

	// The winner left the available pool.
	if got := driverRepo.GetDriver(winnerID).Status; got != domain.DriverStatusBusy {
		t.Errorf("expected winner busy, got %s", got)
	}
}

func TestAccept_AdvisoryDriverCanClaim(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	lifecycle := newLifecycleService(rideRepo, driverRepo, NewCapturePublisher())

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1", // advisory assignment
		Status:      domain.RideStatusPending,
	})

	ride, err := lifecycle.Accept(context.Background(), "driver-1", "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected accepted, got %s", ride.Status)
	}
}

func TestAccept_OtherDriverCannotClaimAdvisoryRide(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	lifecycle := newLifecycleService(rideRepo, driverRepo, NewCapturePublisher())

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-2", Status: domain.DriverStatusAvailable})
	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusPending,
	})

	_, err := lifecycle.Accept(context.Background(), "driver-2", "ride-1")
	if err != service.ErrAlreadyClaimed {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}

	// The advisory assignment survives the failed claim.
	ride := rideRepo.GetRide("ride-1")
	if ride.DriverID != "driver-1" || ride.Status != domain.RideStatusPending {
		t.Errorf("expected untouched advisory ride, got driver=%s status=%s", ride.DriverID, ride.Status)
	}
}

func TestAccept_RepeatedClaimFails(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	lifecycle := newLifecycleService(rideRepo, driverRepo, NewCapturePublisher())

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-2", Status: domain.DriverStatusAvailable})
	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusPending,
	})

	if _, err := lifecycle.Accept(context.Background(), "driver-1", "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Once claimed, the ride is never pending again, for anyone.
	if _, err := lifecycle.Accept(context.Background(), "driver-2", "ride-1"); err != service.ErrAlreadyClaimed {
		t.Errorf("expected ErrAlreadyClaimed for driver-2, got %v", err)
	}
	if _, err := lifecycle.Accept(context.Background(), "driver-1", "ride-1"); err != service.ErrAlreadyClaimed {
		t.Errorf("expected ErrAlreadyClaimed for repeat accept, got %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 to keep the ride, got %s", ride.DriverID)
	}
}

func TestAccept_RequiresExistingDriver(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	lifecycle := newLifecycleService(rideRepo, driverRepo, NewCapturePublisher())

	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusPending,
	})

	_, err := lifecycle.Accept(context.Background(), "ghost-driver", "ride-1")
	if err == nil {
		t.Error("expected error for unknown driver")
	}
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusPending {
		t.Errorf("expected ride untouched, got %s", got)
	}
}

// destChangingRideRepo commits a destination change immediately before the
// claim, mimicking a passenger edit that lands between the accept's prior
// read and the claim itself.
type destChangingRideRepo struct {
	*MockRideRepository
	dest domain.Location
}

func (r *destChangingRideRepo) Claim(ctx context.Context, rideID, driverID string) error {
	if err := r.MockRideRepository.UpdateDestination(ctx, rideID, r.dest); err != nil {
		return err
	}
	return r.MockRideRepository.Claim(ctx, rideID, driverID)
}

func TestAccept_SnapshotIncludesLateDestinationChange(t *testing.T) {
	inner := NewMockRideRepository()
	lateDest := domain.Location{Lat: 30.2, Lng: 31.2}
	rideRepo := &destChangingRideRepo{MockRideRepository: inner, dest: lateDest}
	driverRepo := NewMockDriverRepository()
	publisher := NewCapturePublisher()
	lifecycle := service.NewLifecycleService(rideRepo, driverRepo, publisher)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	inner.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusPending,
		Destination: domain.Location{Lat: 30.05, Lng: 31.05},
	})

	ride, err := lifecycle.Accept(context.Background(), "driver-1", "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The returned snapshot and the published event both reflect the store
	// as committed, late edit included.
	if ride.Destination != lateDest {
		t.Errorf("expected destination %+v in accept snapshot, got %+v", lateDest, ride.Destination)
	}
	ev := publisher.LastRideEvent()
	if ev.New == nil || ev.New.Destination != lateDest {
		t.Error("expected the claim event to carry the committed destination")
	}
}

func TestAccept_PublishesClaimEvent(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()
	publisher := NewCapturePublisher()
	lifecycle := newLifecycleService(rideRepo, driverRepo, publisher)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	rideRepo.AddRide(&domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusPending,
	})

	if _, err := lifecycle.Accept(context.Background(), "driver-1", "ride-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := publisher.LastRideEvent()
	if ev.Old == nil || ev.Old.Status != domain.RideStatusPending {
		t.Error("expected prior snapshot with pending status")
	}
	if ev.New == nil || ev.New.Status != domain.RideStatusAccepted || ev.New.DriverID != "driver-1" {
		t.Error("expected new snapshot with the committed claim")
	}

	// The driver left the pool, so an availability snapshot goes out too.
	if publisher.DriverEventCount() == 0 {
		t.Error("expected a driver-set snapshot after the claim")
	}
}
