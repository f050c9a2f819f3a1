package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LeadsBySource handles GET /api/analytics/leads-by-source
func (h *Handler) LeadsBySource(c *gin.Context) {
	counts, err := h.svc.LeadsBySource(c.Request.Context(), userID(c), c.Query("period"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// LeadMetrics handles GET /api/analytics/metrics
func (h *Handler) LeadMetrics(c *gin.Context) {
	metrics, err := h.svc.LeadMetrics(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
