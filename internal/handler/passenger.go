package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerRepo repository.PassengerRepository
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerRepo repository.PassengerRepository) *PassengerHandler {
	return &PassengerHandler{passengerRepo: passengerRepo}
}

// RegisterPassengerRequest is the HTTP request body for registration.
type RegisterPassengerRequest struct {
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Location LocationDTO `json:"location"`
}

// PassengerResponse is the wire form of a passenger.
type PassengerResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Location LocationDTO `json:"location"`
}

// Register handles POST /v1/passengers/register
func (h *PassengerHandler) Register(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	passenger := &domain.Passenger{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Location:  domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng},
		CreatedAt: time.Now(),
	}

	if err := h.passengerRepo.Create(c.Request.Context(), passenger); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PassengerResponse{
		ID:       passenger.ID,
		Name:     passenger.Name,
		Phone:    passenger.Phone,
		Location: LocationDTO{Lat: passenger.Location.Lat, Lng: passenger.Location.Lng},
	})
}
