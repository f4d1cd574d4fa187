// Package session holds the client-side view of dispatch state. Cached
// snapshots are advisory projections of the record store, refreshed from the
// change feed and never treated as authoritative.
package session

import (
	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/feed"
)

// Reduce folds one change event into a cached ride snapshot and returns the
// new snapshot. It is a pure function: the result depends only on the inputs,
// so every session holding the same snapshot converges on the same view.
//
// Events for a different ride are ignored, as are events that would move the
// status backwards; a duplicate or stale delivery can never regress the view.
func Reduce(current *domain.Ride, ev feed.RideEvent) *domain.Ride {
	if ev.New == nil {
		return current
	}
	if current == nil {
		return ev.New
	}
	if ev.New.ID != current.ID {
		return current
	}
	if domain.StatusRank(ev.New.Status) < domain.StatusRank(current.Status) {
		return current
	}
	return ev.New
}

// RelevantToDriver reports whether a pool event should surface an
// incoming-ride prompt for the given driver: the ride is pending and either
// unassigned or advisorily addressed to this driver. When a pending ride is
// claimed by someone else, the event stops being relevant and the prompt
// must be retracted, not replaced with an error.
func RelevantToDriver(ev feed.RideEvent, driverID string) bool {
	if ev.New == nil || ev.New.Status != domain.RideStatusPending {
		return false
	}
	return ev.New.DriverID == "" || ev.New.DriverID == driverID
}

// WasRelevantToDriver reports whether the event's prior snapshot would have
// surfaced a prompt for the driver. A retract is only due when this held and
// RelevantToDriver no longer does; an event that was never relevant carries
// nothing to withdraw.
func WasRelevantToDriver(ev feed.RideEvent, driverID string) bool {
	if ev.Old == nil || ev.Old.Status != domain.RideStatusPending {
		return false
	}
	return ev.Old.DriverID == "" || ev.Old.DriverID == driverID
}
