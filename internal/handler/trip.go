package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TianyiLi/trip-schedule/internal/domain"
	"github.com/TianyiLi/trip-schedule/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CoordinatesPayload is the request shape for a lat/lng pair.
// Pointers distinguish a missing coordinate from a zero one.
type CoordinatesPayload struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// LocationPayload is the request shape for an itinerary location.
type LocationPayload struct {
	ID                string             `json:"id"`
	Name              string             `json:"name" binding:"required"`
	Address           string             `json:"address"`
	Coordinates       CoordinatesPayload `json:"coordinates" binding:"required"`
	BusinessHours     map[string]string  `json:"businessHours"`
	Notes             string             `json:"notes"`
	EstimatedDuration int                `json:"estimatedDuration" binding:"gte=0"`
	VisitTime         string             `json:"visitTime"`
}

// CreateTripRequest is the request body for creating a trip.
type CreateTripRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"startDate" binding:"required"`
	EndDate     time.Time         `json:"endDate" binding:"required"`
	Locations   []LocationPayload `json:"locations" binding:"dive"`
}

// UpdateTripRequest is the request body for updating a trip.
type UpdateTripRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"startDate" binding:"required"`
	EndDate     time.Time         `json:"endDate" binding:"required"`
	IsCompleted bool              `json:"isCompleted"`
	Locations   []LocationPayload `json:"locations" binding:"dive"`
}

// ReorderLocationsRequest is the request body for reordering an itinerary.
type ReorderLocationsRequest struct {
	Locations []LocationPayload `json:"locations" binding:"required,dive"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Locations   []domain.Location `json:"locations"`
	IsCompleted bool              `json:"isCompleted"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// GetAll handles GET /v1/trips. The optional status query filters to
// active or completed trips.
func (h *TripHandler) GetAll(c *gin.Context) {
	trips := h.tripService.List(c.Request.Context())

	switch c.Query("status") {
	case "active":
		trips = filterTrips(trips, false)
	case "completed":
		trips = filterTrips(trips, true)
	}

	response := make([]TripResponse, len(trips))
	for i, t := range trips {
		response[i] = toTripResponse(t)
	}
	c.JSON(http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(trip))
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), service.CreateTripRequest{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Locations:   toLocations(req.Locations),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTripResponse(trip))
}

// UpdateTrip handles PUT /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.Update(c.Request.Context(), domain.Trip{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsCompleted: req.IsCompleted,
		Locations:   toLocations(req.Locations),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(trip))
}

// DeleteTrip handles DELETE /v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.tripService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	trip, err := h.tripService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(trip))
}

// UncompleteTrip handles POST /v1/trips/:id/uncomplete
func (h *TripHandler) UncompleteTrip(c *gin.Context) {
	trip, err := h.tripService.Uncomplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(trip))
}

// ReorderLocations handles PUT /v1/trips/:id/locations
func (h *TripHandler) ReorderLocations(c *gin.Context) {
	var req ReorderLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.ReorderLocations(c.Request.Context(), c.Param("id"), toLocations(req.Locations))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(trip))
}

func filterTrips(trips []domain.Trip, completed bool) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t.IsCompleted == completed {
			out = append(out, t)
		}
	}
	return out
}

func toLocations(payloads []LocationPayload) []domain.Location {
	out := make([]domain.Location, len(payloads))
	for i, p := range payloads {
		loc := domain.Location{
			ID:                p.ID,
			Name:              p.Name,
			Address:           p.Address,
			BusinessHours:     p.BusinessHours,
			Notes:             p.Notes,
			EstimatedDuration: p.EstimatedDuration,
			VisitTime:         p.VisitTime,
		}
		if p.Coordinates.Lat != nil {
			loc.Coordinates.Lat = *p.Coordinates.Lat
		}
		if p.Coordinates.Lng != nil {
			loc.Coordinates.Lng = *p.Coordinates.Lng
		}
		out[i] = loc
	}
	return out
}

func toTripResponse(t domain.Trip) TripResponse {
	locations := t.Locations
	if locations == nil {
		locations = []domain.Location{}
	}
	return TripResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate.Format(time.RFC3339),
		EndDate:     t.EndDate.Format(time.RFC3339),
		Locations:   locations,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}
