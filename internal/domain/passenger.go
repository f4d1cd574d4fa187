package domain

import "time"

// Passenger represents a rider in the system.
type Passenger struct {
	ID        string
	Name      string
	Phone     string
	Location  Location
	CreatedAt time.Time
}
