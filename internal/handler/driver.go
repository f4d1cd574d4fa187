package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	dispatch      *service.DispatchService
	driverRepo    repository.DriverRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	dispatch *service.DispatchService,
	driverRepo repository.DriverRepository,
) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		dispatch:      dispatch,
		driverRepo:    driverRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	TukTukNumber string      `json:"tuktuk_number"`
	Location     LocationDTO `json:"location"`
}

// UpdateLocationRequest is the HTTP request body for a location report.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SetAvailabilityRequest is the HTTP request body for toggling availability.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	driver := &domain.Driver{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Phone:        req.Phone,
		TukTukNumber: req.TukTukNumber,
		Status:       domain.DriverStatusAvailable,
		Rating:       5.0,
		Location:     domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng},
		CreatedAt:    time.Now(),
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDriverResponse(driver))
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.UpdateLocation(
		c.Request.Context(),
		c.Param("id"),
		domain.Location{Lat: req.Lat, Lng: req.Lng},
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetAvailability handles POST /v1/drivers/:id/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.SetAvailability(c.Request.Context(), c.Param("id"), req.Available); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Nearby handles GET /v1/drivers/nearby
func (h *DriverHandler) Nearby(c *gin.Context) {
	drivers, err := h.dispatch.NearbyAvailableDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	c.JSON(http.StatusOK, response)
}
