// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripcrew/internal/modules/aiusage"
	"tripcrew/internal/modules/session"
	"tripcrew/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// statusFor maps errors that stop a run before it starts to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, trip.ErrInvalidPreferences):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrRunInFlight):
		return http.StatusConflict
	case errors.Is(err, aiusage.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides unexpected errors from the client.
func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
