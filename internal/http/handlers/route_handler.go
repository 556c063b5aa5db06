// README: Route handlers for request/select/clear.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/navigation"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type RouteHandler struct {
	engine *service.Engine
}

func NewRouteHandler(engine *service.Engine) *RouteHandler {
	return &RouteHandler{engine: engine}
}

type routeReq struct {
	Origin        *types.Place `json:"origin"`
	Destination   types.Place  `json:"destination"`
	Mode          string       `json:"mode"`
	AvoidTolls    bool         `json:"avoid_tolls"`
	AvoidHighways bool         `json:"avoid_highways"`
}

type routeResp struct {
	*routing.Result
	TransitSummary string `json:"transit_summary,omitempty"`
}

func newRouteResp(res *routing.Result) routeResp {
	return routeResp{Result: res, TransitSummary: routing.TransitSummary(res.Route)}
}

// Request routes to a destination. Without an origin the last known device position is used.
func (h *RouteHandler) Request(c *gin.Context) {
	var req routeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	mode := routing.ModeDrive
	if req.Mode != "" {
		m, err := routing.ParseTravelMode(req.Mode)
		if err != nil {
			writeRoutingError(c, err, mode)
			return
		}
		mode = m
	}
	origin := req.Origin
	if origin == nil {
		pos, ok := h.engine.LastKnown()
		if !ok {
			writeError(c, http.StatusConflict, "origin required until the device reports a position")
			return
		}
		origin = &types.Place{Name: navigation.MyLocationName, Point: pos.Point}
	}
	res, err := h.engine.RequestRoute(c.Request.Context(), routing.Request{
		Origin:        *origin,
		Destination:   req.Destination,
		Mode:          mode,
		AvoidTolls:    req.AvoidTolls,
		AvoidHighways: req.AvoidHighways,
	})
	if err != nil {
		writeRoutingError(c, err, mode)
		return
	}
	writeJSON(c, http.StatusOK, newRouteResp(res))
}

func (h *RouteHandler) Get(c *gin.Context) {
	res, err := h.engine.Routes()
	if err != nil {
		writeRoutingError(c, err, "")
		return
	}
	writeJSON(c, http.StatusOK, newRouteResp(res))
}

type selectReq struct {
	RouteID string `json:"route_id"`
}

func (h *RouteHandler) Select(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil || !isValidID(req.RouteID) {
		writeError(c, http.StatusBadRequest, "invalid route_id")
		return
	}
	res, err := h.engine.SelectRoute(c.Request.Context(), types.ID(req.RouteID))
	if err != nil {
		writeRoutingError(c, err, "")
		return
	}
	writeJSON(c, http.StatusOK, newRouteResp(res))
}

func (h *RouteHandler) Clear(c *gin.Context) {
	if err := h.engine.ClearRoute(c.Request.Context()); err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
