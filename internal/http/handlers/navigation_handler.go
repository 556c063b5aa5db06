// README: Navigation session and camera handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type NavigationHandler struct {
	engine *service.Engine
}

func NewNavigationHandler(engine *service.Engine) *NavigationHandler {
	return &NavigationHandler{engine: engine}
}

func (h *NavigationHandler) Status(c *gin.Context) {
	st, err := h.engine.Status(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

type startReq struct {
	Origin *types.Place `json:"origin"`
}

// Start is idempotent; "started" is false when a session was already running or no route exists.
func (h *NavigationHandler) Start(c *gin.Context) {
	var req startReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	started, st, err := h.engine.StartNavigation(c.Request.Context(), req.Origin)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"started": started, "status": st})
}

func (h *NavigationHandler) Stop(c *gin.Context) {
	stopped, st, err := h.engine.StopNavigation(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"stopped": stopped, "status": st})
}

func (h *NavigationHandler) Recenter(c *gin.Context) {
	st, err := h.engine.Recenter(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

// ToggleView flips between first-person and overview.
func (h *NavigationHandler) ToggleView(c *gin.Context) {
	st, err := h.engine.ToggleView(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *NavigationHandler) Align(c *gin.Context) {
	st, err := h.engine.AlignWithRoute(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}
