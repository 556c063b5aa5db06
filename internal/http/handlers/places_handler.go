// README: Destination search handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/places"
	"wayfarer/internal/service"
)

type PlacesHandler struct {
	places *places.Service
	engine *service.Engine
}

func NewPlacesHandler(svc *places.Service, engine *service.Engine) *PlacesHandler {
	return &PlacesHandler{places: svc, engine: engine}
}

// Search handles ?q=&limit=&along_route=true. Along-route search needs an active route.
func (h *PlacesHandler) Search(c *gin.Context) {
	if h.places == nil {
		writeError(c, http.StatusServiceUnavailable, "place search not configured")
		return
	}
	limit := places.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var (
		res []places.Result
		err error
	)
	if c.Query("along_route") == "true" {
		current, rerr := h.engine.Routes()
		if rerr != nil {
			writeRoutingError(c, rerr, "")
			return
		}
		res, err = h.places.AlongRoute(c.Request.Context(), c.Query("q"), current.Route.Polyline, limit)
	} else {
		pos, ok := h.engine.LastKnown()
		res, err = h.places.Nearby(c.Request.Context(), c.Query("q"), pos.Point, ok, limit)
	}
	switch {
	case errors.Is(err, places.ErrEmptyQuery):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, places.ErrNoResults):
		writeJSON(c, http.StatusOK, gin.H{"results": []places.Result{}})
	case err != nil:
		writeError(c, http.StatusBadGateway, "place search failed")
	default:
		writeJSON(c, http.StatusOK, gin.H{"results": res})
	}
}
