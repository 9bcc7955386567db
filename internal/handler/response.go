package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TianyiLi/trip-schedule/internal/codec"
	"github.com/TianyiLi/trip-schedule/internal/drive"
	"github.com/TianyiLi/trip-schedule/internal/service"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/store/transport errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var validationErr *codec.ValidationError
	var statusErr *drive.StatusError

	switch {
	// Not found errors
	case errors.Is(err, store.ErrTripNotFound),
		errors.Is(err, drive.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidLocationName),
		errors.Is(err, service.ErrInvalidFileName),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidCSVTarget):
		return http.StatusBadRequest

	// Missing credential
	case errors.Is(err, service.ErrNotAuthenticated),
		errors.Is(err, drive.ErrNotAuthenticated):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, service.ErrSyncInProgress),
		errors.Is(err, service.ErrRestoreNotConfirmed):
		return http.StatusConflict

	// Snapshot failed schema validation
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity

	// Remote transport failure
	case errors.As(err, &statusErr):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
