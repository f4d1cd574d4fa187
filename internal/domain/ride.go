package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending  RideStatus = "pending"
	RideStatusAccepted RideStatus = "accepted"
	RideStatusOnTheWay RideStatus = "on_the_way"
	RideStatusFinished RideStatus = "finished"
)

// statusRank orders statuses along the ride lifecycle. Transitions must
// never regress, so a higher rank always means later in the lifecycle.
var statusRank = map[RideStatus]int{
	RideStatusPending:  0,
	RideStatusAccepted: 1,
	RideStatusOnTheWay: 2,
	RideStatusFinished: 3,
}

// allowedTransitions encodes the ride state flow as code.
var allowedTransitions = map[RideStatus]RideStatus{
	RideStatusPending:  RideStatusAccepted,
	RideStatusAccepted: RideStatusOnTheWay,
	RideStatusOnTheWay: RideStatusFinished,
}

// CanTransition reports whether from -> to is a legal status edge.
func CanTransition(from, to RideStatus) bool {
	next, ok := allowedTransitions[from]
	return ok && next == to
}

// StatusRank returns the lifecycle position of a status, or -1 for an
// unknown status.
func StatusRank(s RideStatus) int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// ValidStatus reports whether s is a known ride status.
func ValidStatus(s RideStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// Ride represents a ride request from creation to completion.
//
// Price and DistanceKm are computed once when the ride is created and never
// recomputed. DriverID is set at most once: either as an advisory assignment
// at creation, or by the winning accept. A ride in "finished" status is
// read-only history.
type Ride struct {
	ID          string
	PassengerID string
	DriverID    string // empty while unassigned (pool mode)
	Pickup      Location
	Destination Location
	Status      RideStatus
	Price       int // whole currency units, frozen at creation
	DistanceKm  float64
	CreatedAt   time.Time
}

// Terminal reports whether the ride has reached its terminal status.
func (r *Ride) Terminal() bool {
	return r.Status == RideStatusFinished
}

// Assigned reports whether a driver has been assigned to the ride.
func (r *Ride) Assigned() bool {
	return r.DriverID != ""
}
