package feed

import (
	"testing"
	"time"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

func pendingRide(id string) *domain.Ride {
	return &domain.Ride{ID: id, PassengerID: "p-1", Status: domain.RideStatusPending}
}

func TestBus_DeliversToRideSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, cancel := bus.SubscribeRide("r-1")
	defer cancel()

	created := pendingRide("r-1")
	bus.PublishRide(RideEvent{New: created})

	select {
	case ev := <-ch:
		if ev.New.ID != "r-1" || ev.Old != nil {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_PerRideCommitOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, cancel := bus.SubscribeRide("r-1")
	defer cancel()

	statuses := []domain.RideStatus{
		domain.RideStatusPending,
		domain.RideStatusAccepted,
		domain.RideStatusOnTheWay,
		domain.RideStatusFinished,
	}
	var prev *domain.Ride
	for _, s := range statuses {
		next := pendingRide("r-1")
		next.Status = s
		bus.PublishRide(RideEvent{Old: prev, New: next})
		prev = next
	}

	for i, want := range statuses {
		select {
		case ev := <-ch:
			if ev.New.Status != want {
				t.Fatalf("event %d: got status %s, want %s", i, ev.New.Status, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBus_ExactlyOneEventPerCommit(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	first, cancelFirst := bus.SubscribeRide("r-1")
	defer cancelFirst()
	second, cancelSecond := bus.SubscribeRide("r-1")
	defer cancelSecond()

	bus.PublishRide(RideEvent{New: pendingRide("r-1")})

	for name, ch := range map[string]<-chan RideEvent{"first": first, "second": second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber saw no event", name)
		}
		select {
		case ev := <-ch:
			t.Fatalf("%s subscriber saw duplicate event: %+v", name, ev)
		default:
		}
	}
}

func TestBus_PoolSeesCreationAndClaim(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	pool, cancel := bus.SubscribePool(nil)
	defer cancel()

	created := pendingRide("r-1")
	bus.PublishRide(RideEvent{New: created})

	accepted := pendingRide("r-1")
	accepted.Status = domain.RideStatusAccepted
	accepted.DriverID = "d-1"
	bus.PublishRide(RideEvent{Old: created, New: accepted})

	// Later transitions no longer concern the pool.
	onTheWay := pendingRide("r-1")
	onTheWay.Status = domain.RideStatusOnTheWay
	onTheWay.DriverID = "d-1"
	bus.PublishRide(RideEvent{Old: accepted, New: onTheWay})

	got := 0
	for {
		select {
		case <-pool:
			got++
		case <-time.After(100 * time.Millisecond):
			if got != 2 {
				t.Fatalf("pool saw %d events, want 2 (creation and claim)", got)
			}
			return
		}
	}
}

func TestBus_PoolFilterApplies(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	pool, cancel := bus.SubscribePool(func(r *domain.Ride) bool {
		return r.Pickup.Lat > 0
	})
	defer cancel()

	south := pendingRide("r-south")
	south.Pickup = domain.Location{Lat: -10, Lng: 31}
	bus.PublishRide(RideEvent{New: south})

	north := pendingRide("r-north")
	north.Pickup = domain.Location{Lat: 30, Lng: 31}
	bus.PublishRide(RideEvent{New: north})

	select {
	case ev := <-pool:
		if ev.New.ID != "r-north" {
			t.Errorf("filter leaked ride %s", ev.New.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the matching ride to pass the filter")
	}
	select {
	case ev := <-pool:
		t.Fatalf("unexpected extra pool event: %+v", ev)
	default:
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, cancel := bus.SubscribeRide("r-1")
	cancel()

	bus.PublishRide(RideEvent{New: pendingRide("r-1")})

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("cancelled subscriber received event: %+v", ev)
		}
	default:
	}
}

func TestBus_DriverSnapshots(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, cancel := bus.SubscribeDrivers()
	defer cancel()

	bus.PublishDrivers(DriverSetEvent{Drivers: []*domain.Driver{
		{ID: "d-1", Status: domain.DriverStatusAvailable},
		{ID: "d-2", Status: domain.DriverStatusAvailable},
	}})

	select {
	case ev := <-ch:
		if len(ev.Drivers) != 2 {
			t.Errorf("expected 2 drivers in snapshot, got %d", len(ev.Drivers))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for driver snapshot")
	}
}
