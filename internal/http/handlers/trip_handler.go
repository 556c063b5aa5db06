// README: Trip log handlers for list/get.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/trip"
	"wayfarer/internal/types"
)

type TripHandler struct {
	trips *trip.Recorder
}

func NewTripHandler(trips *trip.Recorder) *TripHandler {
	return &TripHandler{trips: trips}
}

func (h *TripHandler) List(c *gin.Context) {
	if h.trips == nil {
		writeError(c, http.StatusServiceUnavailable, "trip log not configured")
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > trip.MaxRecent {
			writeError(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	trips, err := h.trips.Recent(c.Request.Context(), limit)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": trips})
}

func (h *TripHandler) Get(c *gin.Context) {
	if h.trips == nil {
		writeError(c, http.StatusServiceUnavailable, "trip log not configured")
		return
	}
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	t, err := h.trips.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

func writeTripError(c *gin.Context, err error) {
	if errors.Is(err, trip.ErrNotFound) {
		writeError(c, http.StatusNotFound, "trip not found")
		return
	}
	writeEngineError(c, err)
}
