package session

import (
	"testing"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
)

func ride(id string, status domain.RideStatus, driverID string) *domain.Ride {
	return &domain.Ride{ID: id, PassengerID: "p-1", DriverID: driverID, Status: status}
}

func TestReduce_AppliesForwardProgress(t *testing.T) {
	t.Parallel()

	current := ride("r-1", domain.RideStatusPending, "")
	accepted := ride("r-1", domain.RideStatusAccepted, "d-1")

	got := Reduce(current, feed.RideEvent{Old: current, New: accepted})
	if got != accepted {
		t.Errorf("expected snapshot to advance to accepted, got %v", got.Status)
	}
}

func TestReduce_IgnoresStatusRegression(t *testing.T) {
	t.Parallel()

	current := ride("r-1", domain.RideStatusOnTheWay, "d-1")
	stale := ride("r-1", domain.RideStatusAccepted, "d-1")

	got := Reduce(current, feed.RideEvent{Old: nil, New: stale})
	if got != current {
		t.Errorf("expected stale event to be ignored, got %v", got.Status)
	}
}

func TestReduce_IgnoresOtherRides(t *testing.T) {
	t.Parallel()

	current := ride("r-1", domain.RideStatusAccepted, "d-1")
	other := ride("r-2", domain.RideStatusFinished, "d-2")

	got := Reduce(current, feed.RideEvent{New: other})
	if got != current {
		t.Error("expected event for another ride to be ignored")
	}
}

func TestReduce_NilSnapshotAdoptsEvent(t *testing.T) {
	t.Parallel()

	created := ride("r-1", domain.RideStatusPending, "")
	got := Reduce(nil, feed.RideEvent{New: created})
	if got != created {
		t.Error("expected nil snapshot to adopt the incoming ride")
	}
}

func TestReduce_Deterministic(t *testing.T) {
	t.Parallel()

	current := ride("r-1", domain.RideStatusPending, "")
	ev := feed.RideEvent{Old: current, New: ride("r-1", domain.RideStatusAccepted, "d-1")}

	first := Reduce(current, ev)
	second := Reduce(current, ev)
	if first != second {
		t.Error("expected identical inputs to produce identical snapshots")
	}
}

func TestRelevantToDriver(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ev       feed.RideEvent
		driverID string
		want     bool
	}{
		{
			name:     "unassigned pending ride is relevant to everyone",
			ev:       feed.RideEvent{New: ride("r-1", domain.RideStatusPending, "")},
			driverID: "d-1",
			want:     true,
		},
		{
			name:     "advisory assignment targets one driver",
			ev:       feed.RideEvent{New: ride("r-1", domain.RideStatusPending, "d-1")},
			driverID: "d-1",
			want:     true,
		},
		{
			name:     "advisory assignment excludes other drivers",
			ev:       feed.RideEvent{New: ride("r-1", domain.RideStatusPending, "d-1")},
			driverID: "d-2",
			want:     false,
		},
		{
			name:     "claimed ride retracts the prompt",
			ev:       feed.RideEvent{Old: ride("r-1", domain.RideStatusPending, ""), New: ride("r-1", domain.RideStatusAccepted, "d-2")},
			driverID: "d-1",
			want:     false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := RelevantToDriver(tc.ev, tc.driverID); got != tc.want {
				t.Errorf("RelevantToDriver = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWasRelevantToDriver(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ev       feed.RideEvent
		driverID string
		want     bool
	}{
		{
			name:     "claim of an unassigned ride withdraws everyone's prompt",
			ev:       feed.RideEvent{Old: ride("r-1", domain.RideStatusPending, ""), New: ride("r-1", domain.RideStatusAccepted, "d-2")},
			driverID: "d-1",
			want:     true,
		},
		{
			name:     "claim of someone else's advisory ride withdraws nothing here",
			ev:       feed.RideEvent{Old: ride("r-1", domain.RideStatusPending, "d-2"), New: ride("r-1", domain.RideStatusAccepted, "d-2")},
			driverID: "d-1",
			want:     false,
		},
		{
			name:     "creation has no prior prompt",
			ev:       feed.RideEvent{New: ride("r-1", domain.RideStatusPending, "d-2")},
			driverID: "d-1",
			want:     false,
		},
		{
			name:     "prior prompt held for the advisory driver",
			ev:       feed.RideEvent{Old: ride("r-1", domain.RideStatusPending, "d-1"), New: ride("r-1", domain.RideStatusAccepted, "d-1")},
			driverID: "d-1",
			want:     true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := WasRelevantToDriver(tc.ev, tc.driverID); got != tc.want {
				t.Errorf("WasRelevantToDriver = %v, want %v", got, tc.want)
			}
		})
	}
}
