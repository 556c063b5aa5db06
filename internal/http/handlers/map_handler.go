// README: Map surface handlers: snapshot polling, gestures, viewport and screen conversions.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/mapview"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type MapHandler struct {
	engine *service.Engine
}

func NewMapHandler(engine *service.Engine) *MapHandler {
	return &MapHandler{engine: engine}
}

func (h *MapHandler) Snapshot(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.engine.Map())
}

// RegionWillChange is sent by the client when the user starts moving the map.
func (h *MapHandler) RegionWillChange(c *gin.Context) {
	st, err := h.engine.RegionWillChange(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *MapHandler) SetViewport(c *gin.Context) {
	var v mapview.Viewport
	if err := c.ShouldBindJSON(&v); err != nil || v.Width <= 0 || v.Height <= 0 {
		writeError(c, http.StatusBadRequest, "width and height must be positive")
		return
	}
	h.engine.SetViewport(v)
	writeJSON(c, http.StatusOK, h.engine.Viewport())
}

// Coordinate converts ?x=&y= screen points to a coordinate.
func (h *MapHandler) Coordinate(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		writeError(c, http.StatusBadRequest, "x and y required")
		return
	}
	writeJSON(c, http.StatusOK, h.engine.ScreenToCoordinate(mapview.ScreenPoint{X: x, Y: y}))
}

// Point converts ?lat=&lng= to a screen point.
func (h *MapHandler) Point(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	p := types.Point{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !p.Valid() {
		writeError(c, http.StatusBadRequest, "valid lat and lng required")
		return
	}
	pt, visible := h.engine.CoordinateToScreen(p)
	writeJSON(c, http.StatusOK, gin.H{"point": pt, "visible": visible})
}
