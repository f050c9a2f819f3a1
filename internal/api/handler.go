package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
	"github.com/leadtrack/server/internal/service"
	"github.com/leadtrack/server/internal/utils"
)

// Handler holds the service and exposes the HTTP endpoints
type Handler struct {
	svc    service.Service
	logger *utils.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", AuthMiddleware())
	authed.GET("/auth/me", h.Me)

	authed.GET("/leads", h.ListLeads)
	authed.POST("/leads", h.CreateLead)
	authed.GET("/leads/export/csv", h.ExportLeadsCSV)
	authed.GET("/leads/:id", h.GetLead)
	authed.PUT("/leads/:id", h.UpdateLead)
	authed.GET("/leads/:id/notes", h.ListNotes)
	authed.POST("/leads/:id/notes", h.AddNote)

	authed.GET("/activities", h.ListActivities)

	authed.GET("/reminders", h.ListReminders)
	authed.POST("/reminders", h.CreateReminder)
	authed.PUT("/reminders/:id", h.UpdateReminder)
	authed.POST("/reminders/:id/complete", h.CompleteReminder)

	authed.GET("/analytics/leads-by-source", h.LeadsBySource)
	authed.GET("/analytics/metrics", h.LeadMetrics)
}

// userID returns the authenticated caller's id placed by AuthMiddleware
func userID(c *gin.Context) string {
	return c.MustGet("userId").(string)
}

// respondError maps a typed service failure onto an HTTP response. Unknown
// errors are logged and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		code := "INTERNAL_ERROR"
		switch appErr.Kind {
		case apperrors.KindValidation:
			status, code = http.StatusBadRequest, "VALIDATION_ERROR"
		case apperrors.KindNotFound:
			status, code = http.StatusNotFound, "NOT_FOUND"
		case apperrors.KindConflict:
			status, code = http.StatusConflict, "CONFLICT"
		case apperrors.KindUnavailable:
			status, code = http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
			h.logger.Error("store failure: %v", err)
		}
		c.JSON(status, models.ErrorResponse{
			Status:  "error",
			Code:    code,
			Message: appErr.Message,
		})
		return
	}

	h.logger.Error("unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Status:  "error",
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

// badRequest reports a malformed request body or parameter
func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}
