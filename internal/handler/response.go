package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LocationDTO is the wire form of a coordinate pair.
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RideResponse is the wire form of a ride snapshot.
type RideResponse struct {
	ID          string      `json:"id"`
	PassengerID string      `json:"passenger_id"`
	DriverID    string      `json:"driver_id,omitempty"`
	Pickup      LocationDTO `json:"pickup"`
	Destination LocationDTO `json:"destination"`
	Status      string      `json:"status"`
	Price       int         `json:"price"`
	DistanceKm  float64     `json:"distance_km"`
	CreatedAt   string      `json:"created_at"`
}

// DriverResponse is the wire form of a driver.
type DriverResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	TukTukNumber string      `json:"tuktuk_number"`
	Status       string      `json:"status"`
	Rating       float64     `json:"rating"`
	TotalRides   int         `json:"total_rides"`
	Location     LocationDTO `json:"location"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:          r.ID,
		PassengerID: r.PassengerID,
		DriverID:    r.DriverID,
		Pickup:      LocationDTO{Lat: r.Pickup.Lat, Lng: r.Pickup.Lng},
		Destination: LocationDTO{Lat: r.Destination.Lat, Lng: r.Destination.Lng},
		Status:      string(r.Status),
		Price:       r.Price,
		DistanceKm:  r.DistanceKm,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:           d.ID,
		Name:         d.Name,
		TukTukNumber: d.TukTukNumber,
		Status:       string(d.Status),
		Rating:       d.Rating,
		TotalRides:   d.TotalRides,
		Location:     LocationDTO{Lat: d.Location.Lat, Lng: d.Location.Lng},
	}
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation):
		return http.StatusBadRequest

	// Lost races and rejected transitions are conflicts: the record store
	// holds a different state than the caller assumed.
	case errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, service.ErrNotRideOwner):
		return http.StatusForbidden

	// Store failures and everything else
	default:
		return http.StatusInternalServerError
	}
}
