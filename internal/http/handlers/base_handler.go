// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wayfarer/internal/device"
	"wayfarer/internal/dispatch"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// isValidID accepts the UUIDs the engine hands out for routes.
func isValidID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeRoutingError maps route request failures; message is the text shown to the user.
func writeRoutingError(c *gin.Context, err error, mode routing.TravelMode) {
	var te *routing.TransportError
	resp := errorResponse{Error: err.Error(), Message: routing.UserMessage(err, mode)}
	switch {
	case errors.Is(err, routing.ErrBadRequest):
		writeJSON(c, http.StatusBadRequest, resp)
	case errors.Is(err, routing.ErrNoRoute):
		writeJSON(c, http.StatusNotFound, resp)
	case errors.Is(err, routing.ErrUnknownRoute), errors.Is(err, routing.ErrNoActiveRoute):
		writeJSON(c, http.StatusNotFound, resp)
	case errors.Is(err, routing.ErrSuperseded):
		writeJSON(c, http.StatusConflict, resp)
	case errors.Is(err, routing.ErrRejected):
		writeJSON(c, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &te):
		writeJSON(c, http.StatusBadGateway, resp)
	default:
		writeEngineError(c, err)
	}
}

func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, location.ErrInvalidPosition):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrStalePosition), errors.Is(err, device.ErrNotStarted), errors.Is(err, service.ErrNoPosition):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, device.ErrPermissionDenied):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, dispatch.ErrClosed):
		writeError(c, http.StatusServiceUnavailable, "engine shutting down")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
