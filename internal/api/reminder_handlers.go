package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadtrack/server/internal/models"
)

// CreateReminder handles POST /api/reminders
func (h *Handler) CreateReminder(c *gin.Context) {
	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid reminder request: "+err.Error())
		return
	}

	reminder, err := h.svc.CreateReminder(c.Request.Context(), userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// UpdateReminder handles PUT /api/reminders/:id
func (h *Handler) UpdateReminder(c *gin.Context) {
	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid reminder patch: "+err.Error())
		return
	}

	reminder, err := h.svc.UpdateReminder(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// CompleteReminder handles POST /api/reminders/:id/complete
func (h *Handler) CompleteReminder(c *gin.Context) {
	if err := h.svc.CompleteReminder(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: "Reminder completed",
	})
}

// ListReminders handles GET /api/reminders
func (h *Handler) ListReminders(c *gin.Context) {
	filters := models.ReminderFilters{
		Overdue: c.Query("overdue") == "true",
	}

	date, ok := parseTimeParam(c.Query("date"))
	if !ok {
		h.badRequest(c, "Invalid date")
		return
	}
	filters.Date = date

	if completed := c.Query("completed"); completed != "" {
		value := completed == "true"
		filters.Completed = &value
	}

	reminders, err := h.svc.ListReminders(c.Request.Context(), userID(c), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reminders)
}
