// README: Recent destinations.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/history"
	"wayfarer/internal/service"
)

type HistoryHandler struct {
	engine *service.Engine
}

func NewHistoryHandler(engine *service.Engine) *HistoryHandler {
	return &HistoryHandler{engine: engine}
}

func (h *HistoryHandler) Recent(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > history.DefaultCapacity {
			writeError(c, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	entries, err := h.engine.History(c.Request.Context(), limit)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"entries": entries})
}
