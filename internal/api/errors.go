package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chroniclehq/chronicle/internal/httputil"
	"github.com/chroniclehq/chronicle/internal/metrics"
	"github.com/chroniclehq/chronicle/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeValidationError = "validation_error"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInvalidState    = "invalid_state"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// errorStatus maps a service error to its HTTP status and error code.
// Unknown errors are treated as internal and their detail is not exposed.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "transaction not found"
	case errors.Is(err, models.ErrEntityNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "entity not found"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, ErrCodeInvalidState, err.Error()
	case errors.Is(err, models.ErrEntityExists):
		return http.StatusConflict, ErrCodeConflict, err.Error()
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest, ErrCodeValidationError, err.Error()
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUnavailable, "storage unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	}
}

// respondServiceError maps err onto the taxonomy and writes the response.
// Internal errors are logged by the caller before reaching here.
func respondServiceError(c *gin.Context, err error) {
	status, code, msg := errorStatus(err)
	respondError(c, status, code, msg)
}
