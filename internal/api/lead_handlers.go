package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadtrack/server/internal/models"
)

const dateOnlyLayout = "2006-01-02"

// parseTimeParam accepts RFC3339 instants or plain calendar dates
func parseTimeParam(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, dateOnlyLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// parseEndTimeParam widens a date-only upper bound to the end of that day,
// so a [startDate, endDate] range stays inclusive of the whole end day.
func parseEndTimeParam(value string) (*time.Time, bool) {
	t, ok := parseTimeParam(value)
	if !ok || t == nil {
		return t, ok
	}
	if len(value) == len(dateOnlyLayout) {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end, true
	}
	return t, true
}

// parsePositiveInt parses a pagination parameter, falling back to def when
// the parameter is absent
func parsePositiveInt(value string, def int) (int, bool) {
	if value == "" {
		return def, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// CreateLead handles POST /api/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid lead request: "+err.Error())
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLead handles GET /api/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	lead, err := h.svc.GetLead(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLead handles PUT /api/leads/:id
func (h *Handler) UpdateLead(c *gin.Context) {
	var req models.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid lead patch: "+err.Error())
		return
	}

	lead, err := h.svc.UpdateLead(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// leadFiltersFromQuery builds lead list filters from the query string
func (h *Handler) leadFiltersFromQuery(c *gin.Context) (models.LeadFilters, bool) {
	filters := models.LeadFilters{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Source: c.Query("source"),
	}

	start, ok := parseTimeParam(c.Query("startDate"))
	if !ok {
		h.badRequest(c, "Invalid startDate")
		return filters, false
	}
	filters.StartDate = start

	end, ok := parseEndTimeParam(c.Query("endDate"))
	if !ok {
		h.badRequest(c, "Invalid endDate")
		return filters, false
	}
	filters.EndDate = end

	page, ok := parsePositiveInt(c.Query("page"), 1)
	if !ok {
		h.badRequest(c, "page must be a positive integer")
		return filters, false
	}
	filters.Page = page

	pageSize, ok := parsePositiveInt(c.Query("limit"), 10)
	if !ok {
		h.badRequest(c, "limit must be a positive integer")
		return filters, false
	}
	filters.PageSize = pageSize

	return filters, true
}

// ListLeads handles GET /api/leads
func (h *Handler) ListLeads(c *gin.Context) {
	filters, ok := h.leadFiltersFromQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListLeads(c.Request.Context(), userID(c), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// exportPageSize is the batch size the CSV export streams in.
const exportPageSize = 1000

// ExportLeadsCSV handles GET /api/leads/export/csv
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// Fetch the first page before committing to a 200 so store failures
	// still surface as proper error responses
	resp, err := h.svc.ListLeads(ctx, uid, models.LeadFilters{Page: 1, PageSize: exportPageSize})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Name", "Email", "Phone", "Company", "Source", "Status", "Created At"})

	page := 1
	for {
		for _, lead := range resp.Leads {
			_ = w.Write([]string{
				lead.Name, lead.Email, lead.Phone, lead.Company,
				lead.Source, lead.Status, lead.CreatedAt.Format(time.RFC3339),
			})
		}
		if page*exportPageSize >= resp.Total || len(resp.Leads) == 0 {
			break
		}
		page++
		resp, err = h.svc.ListLeads(ctx, uid, models.LeadFilters{Page: page, PageSize: exportPageSize})
		if err != nil {
			// Headers are already on the wire; log and stop the stream
			h.logger.Error("lead export aborted on page %d: %v", page, err)
			break
		}
	}
	w.Flush()
}
