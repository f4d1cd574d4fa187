package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a conditional update finds the record
	// in a different state than expected. Lost races surface as this.
	ErrConflict = errors.New("conditional update conflict")
)
