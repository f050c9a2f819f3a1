package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadtrack/server/internal/models"
)

// AddNote handles POST /api/leads/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid note request: "+err.Error())
		return
	}

	note, err := h.svc.AddNote(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /api/leads/:id/notes
func (h *Handler) ListNotes(c *gin.Context) {
	notes, err := h.svc.ListNotes(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, notes)
}

// ListActivities handles GET /api/activities
func (h *Handler) ListActivities(c *gin.Context) {
	limit, ok := parsePositiveInt(c.Query("limit"), 10)
	if !ok {
		h.badRequest(c, "limit must be a positive integer")
		return
	}

	activities, err := h.svc.ListRecentActivities(c.Request.Context(), userID(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}
