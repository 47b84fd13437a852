package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"github.com/techadnank9/alien-miniapp-uber/internal/utils" // Sentinel errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// statusFor maps sentinel errors to HTTP status codes in one place.
func statusFor(err error) int {
	switch {
	case errors.Is(err, utils.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrInvalidTransition), errors.Is(err, utils.ErrInvoiceConflict):
		return http.StatusConflict
	case errors.Is(err, utils.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, utils.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the structured error response for err.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
