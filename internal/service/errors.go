package service

import "errors"

var (
	// ErrInvalidTransition is returned when a status edge is not permitted
	// or the caller is not authorized to trigger it.
	ErrInvalidTransition = errors.New("invalid ride transition")

	// ErrAlreadyClaimed is returned to a driver that lost the accept race.
	// This is an expected steady-state outcome, not a failure.
	ErrAlreadyClaimed = errors.New("ride no longer available")

	// ErrNoDriverAvailable signals that matching found no candidate. The
	// ride is still created in pool mode; callers treat this as degraded
	// success.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are out
	// of range.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination
	// coordinates are out of range.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when location coordinates are out of
	// range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNotRideOwner is returned when a passenger operates on a ride that
	// is not theirs.
	ErrNotRideOwner = errors.New("ride belongs to another passenger")
)
