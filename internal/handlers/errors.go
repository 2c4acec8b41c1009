package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-search/internal/models"
	"property-search/internal/query"
	"property-search/internal/session"
	"property-search/internal/upstream"
	"property-search/internal/viewport"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnknownListing):
		return http.StatusNotFound
	case errors.Is(err, session.ErrPageOutOfRange),
		errors.Is(err, session.ErrNotLoaded),
		errors.Is(err, session.ErrNoSelection),
		errors.Is(err, viewport.ErrNoMap):
		return http.StatusConflict
	case errors.Is(err, upstream.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, upstream.ErrNetworkFailure),
		errors.Is(err, upstream.ErrUpstream),
		errors.Is(err, upstream.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, query.ErrInvalidPage),
		errors.Is(err, query.ErrInvalidPageSize),
		errors.Is(err, query.ErrInvalidSort),
		errors.Is(err, query.ErrInvalidType),
		errors.Is(err, query.ErrInvalidRange),
		errors.Is(err, query.ErrUnknownAmenity),
		errors.Is(err, query.ErrUnknownField),
		errors.Is(err, models.ErrInvalidBounds):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
