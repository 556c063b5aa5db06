// README: Device ingest handlers; the client pushes fixes, compass readings and permission changes.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/heading"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type DeviceHandler struct {
	engine *service.Engine
}

func NewDeviceHandler(engine *service.Engine) *DeviceHandler {
	return &DeviceHandler{engine: engine}
}

type locationReq struct {
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *DeviceHandler) Location(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng required")
		return
	}
	err := h.engine.PushLocation(types.Position{
		Point:     types.Point{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy:  req.Accuracy,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

type headingReq struct {
	Degrees   *float64  `json:"degrees"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *DeviceHandler) Heading(c *gin.Context) {
	var req headingReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Degrees == nil {
		writeError(c, http.StatusBadRequest, "degrees required")
		return
	}
	if err := h.engine.PushHeading(heading.Sample{Degrees: *req.Degrees, Timestamp: req.Timestamp}); err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

type authorizationReq struct {
	Authorization location.Authorization `json:"authorization"`
}

func (h *DeviceHandler) Authorization(c *gin.Context) {
	var req authorizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	switch req.Authorization {
	case location.AuthNotDetermined, location.AuthDenied, location.AuthWhenInUse, location.AuthAlways:
	default:
		writeError(c, http.StatusBadRequest, "unknown authorization")
		return
	}
	h.engine.SetAuthorization(req.Authorization)
	writeJSON(c, http.StatusOK, req)
}

func (h *DeviceHandler) EnableHeading(c *gin.Context) {
	if err := h.engine.EnableHeading(c.Request.Context()); err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"heading_enabled": true})
}

func (h *DeviceHandler) DisableHeading(c *gin.Context) {
	if err := h.engine.DisableHeading(c.Request.Context()); err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"heading_enabled": false})
}
