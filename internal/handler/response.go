package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/repository"
	"fleetops/internal/service"
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

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
// Validation errors mean "nothing changed, try a different action";
// ErrUnknownOutcome means "temporarily unavailable, re-query and retry".
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDocumentID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRideType),
		errors.Is(err, service.ErrInvalidFareInput),
		errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest

	// State-machine and precondition conflicts
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrImmutableTerminalState),
		errors.Is(err, service.ErrNotCompletable),
		errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrDriverNotVerifiable),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict

	// Ambiguous store outcome - caller should re-query and retry
	case errors.Is(err, service.ErrUnknownOutcome):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
