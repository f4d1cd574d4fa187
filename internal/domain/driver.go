package domain

import "time"

// DriverStatus represents the availability of a driver.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusBusy      DriverStatus = "busy"
)

// Driver represents a tuktuk driver in the system.
// Drivers are created by the registration flow; the dispatch core only
// mutates their location, availability and cumulative ride count.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	TukTukNumber string
	Status       DriverStatus
	Rating       float64
	TotalRides   int
	Location     Location
	CreatedAt    time.Time
}
