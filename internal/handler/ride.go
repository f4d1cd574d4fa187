package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	dispatch  *service.DispatchService
	lifecycle *service.LifecycleService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(dispatch *service.DispatchService, lifecycle *service.LifecycleService) *RideHandler {
	return &RideHandler{
		dispatch:  dispatch,
		lifecycle: lifecycle,
	}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	PassengerID string      `json:"passenger_id"`
	Pickup      LocationDTO `json:"pickup"`
	Destination LocationDTO `json:"destination"`
}

// RequestRideResponse is the HTTP response for requesting a ride.
type RequestRideResponse struct {
	RideResponse
	DriverAssigned bool `json:"driver_assigned"`
}

// AcceptRideRequest is the HTTP request body for accepting a ride.
type AcceptRideRequest struct {
	DriverID string `json:"driver_id"`
}

// AdvanceRideRequest is the HTTP request body for advancing a ride.
type AdvanceRideRequest struct {
	DriverID     string `json:"driver_id"`
	TargetStatus string `json:"target_status"`
}

// ChangeDestinationRequest is the HTTP request body for changing a ride's
// destination while it is still pending.
type ChangeDestinationRequest struct {
	PassengerID string      `json:"passenger_id"`
	Destination LocationDTO `json:"destination"`
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.dispatch.RequestRide(c.Request.Context(), service.RequestRideInput{
		PassengerID: req.PassengerID,
		Pickup:      domain.Location{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		Destination: domain.Location{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RequestRideResponse{
		RideResponse:   toRideResponse(result.Ride),
		DriverAssigned: result.DriverAssigned,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.dispatch.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// AcceptRide handles POST /v1/rides/:id/accept
//
// A 409 here means the caller lost the claim race; the driver client reacts
// by retracting its incoming-ride prompt, not by showing an error.
func (h *RideHandler) AcceptRide(c *gin.Context) {
	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.Accept(c.Request.Context(), req.DriverID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// AdvanceRide handles POST /v1/rides/:id/advance
func (h *RideHandler) AdvanceRide(c *gin.Context) {
	var req AdvanceRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.Advance(
		c.Request.Context(),
		req.DriverID,
		c.Param("id"),
		domain.RideStatus(req.TargetStatus),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// ChangeDestination handles POST /v1/rides/:id/destination
func (h *RideHandler) ChangeDestination(c *gin.Context) {
	var req ChangeDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.ChangeDestination(
		c.Request.Context(),
		req.PassengerID,
		c.Param("id"),
		domain.Location{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// ActiveRide handles GET /v1/rides/active?actor_id=...
func (h *RideHandler) ActiveRide(c *gin.Context) {
	ride, err := h.dispatch.ActiveRideFor(c.Request.Context(), c.Query("actor_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ride == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// PendingPool handles GET /v1/rides/pending
func (h *RideHandler) PendingPool(c *gin.Context) {
	rides, err := h.dispatch.PendingPool(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	c.JSON(http.StatusOK, response)
}
