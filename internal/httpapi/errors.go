package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/app"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/clipper"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/suggest"
)

// errBadRequest marks malformed request bodies and query parameters.
var errBadRequest = errors.New("bad request")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var se *suggest.Error
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, shopping.ErrInvalidItem),
		errors.Is(err, profile.ErrInvalid),
		errors.Is(err, archive.ErrEmptyList),
		errors.Is(err, archive.ErrInvalidLabel),
		errors.Is(err, clipper.ErrInvalidURL),
		errors.Is(err, analytics.ErrEntryCount),
		errors.Is(err, analytics.ErrUnknownUnit),
		errors.Is(err, app.ErrUnknownAction),
		suggest.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, shopping.ErrNotFound),
		errors.Is(err, archive.ErrNotFound),
		errors.Is(err, app.ErrUnknownConfirmation):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNothingToConfirm):
		return http.StatusConflict
	case errors.Is(err, suggest.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &se):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
