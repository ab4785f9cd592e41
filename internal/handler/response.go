package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/repository"
	"pos/internal/service"
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
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrInvalidPhoneFormat),
		errors.Is(err, service.ErrMethodPhoneMismatch),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNotReconcilable):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrNotRefundable),
		errors.Is(err, service.ErrReceiptUnavailable):
		return http.StatusConflict

	// Upstream provider failure
	case errors.Is(err, service.ErrGatewayError):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
