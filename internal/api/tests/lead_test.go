package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadtrack/server/internal/api/testutils"
	"github.com/leadtrack/server/internal/models"
)

func createLead(t *testing.T, testCtx *testutils.TestContext, req models.CreateLeadRequest) models.Lead {
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads", req,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusCreated, w.Code)

	var lead models.Lead
	err := json.Unmarshal(w.Body.Bytes(), &lead)
	assert.NoError(t, err)
	return lead
}

func TestCreateLead(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful creation with default status
	lead := createLead(t, testCtx, models.CreateLeadRequest{
		Name:   "Acme",
		Source: models.SourceWebsite,
	})
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.Equal(t, testCtx.TestUserID, lead.UserID)
	if assert.Len(t, lead.StatusHistory, 1) {
		assert.Equal(t, models.StatusNew, lead.StatusHistory[0].Status)
		assert.Equal(t, testCtx.TestUserID, lead.StatusHistory[0].ChangedBy)
	}

	// Test case 2: Explicit status is honored
	lead = createLead(t, testCtx, models.CreateLeadRequest{
		Name:   "Globex",
		Source: models.SourceReferral,
		Status: models.StatusContacted,
		Tags:   []string{"priority", "inbound"},
	})
	assert.Equal(t, models.StatusContacted, lead.Status)
	if assert.Len(t, lead.StatusHistory, 1) {
		assert.Equal(t, models.StatusContacted, lead.StatusHistory[0].Status)
	}

	// Test case 3: Invalid source
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads",
		models.CreateLeadRequest{Name: "Bad", Source: "Carrier Pigeon"},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Invalid status
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads",
		models.CreateLeadRequest{Name: "Bad", Source: models.SourceAd, Status: "Frozen"},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 5: Missing name
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads",
		models.CreateLeadRequest{Source: models.SourceAd},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 6: Unauthorized
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads",
		models.CreateLeadRequest{Name: "Acme", Source: models.SourceWebsite}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateLeadStatusHistory(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	lead := createLead(t, testCtx, models.CreateLeadRequest{Name: "Acme", Source: models.SourceWebsite})

	// Transition to Qualified appends to the history
	status := models.StatusQualified
	w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Status: &status},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Lead
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusQualified, updated.Status)
	if assert.Len(t, updated.StatusHistory, 2) {
		assert.Equal(t, models.StatusNew, updated.StatusHistory[0].Status)
		assert.Equal(t, models.StatusQualified, updated.StatusHistory[1].Status)
	}
	assert.False(t, updated.UpdatedAt.Before(lead.UpdatedAt))

	// Same status again is not a transition
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Status: &status},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Len(t, updated.StatusHistory, 2)

	// Plain field update does not touch the history
	company := "Acme Corp"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Company: &company},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Acme Corp", updated.Company)
	assert.Len(t, updated.StatusHistory, 2)

	// Invalid status value
	bad := "Frozen"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Status: &bad},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadOwnership(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	lead := createLead(t, testCtx, models.CreateLeadRequest{Name: "Acme", Source: models.SourceWebsite})

	_, otherToken := testutils.CreateTestUser(t, testCtx.Repository, "other@example.com", "Other User")

	// Another user's read looks like a missing lead, never a forbidden one
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads/"+lead.ID, nil,
		testutils.AuthHeaders(otherToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	name := "Hijacked"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Name: &name},
		testutils.AuthHeaders(otherToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads/"+lead.ID+"/notes",
		models.CreateNoteRequest{Text: "sneaky"},
		testutils.AuthHeaders(otherToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The owner still sees it
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads/"+lead.ID, nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListLeads(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	for i := 0; i < 5; i++ {
		createLead(t, testCtx, models.CreateLeadRequest{
			Name:   fmt.Sprintf("Lead %d", i),
			Source: models.SourceWebsite,
		})
	}
	createLead(t, testCtx, models.CreateLeadRequest{
		Name:    "Referral Lead",
		Company: "Initech",
		Source:  models.SourceReferral,
		Status:  models.StatusContacted,
	})

	// Test case 1: Default page returns everything, newest first
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.LeadListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Total)
	assert.Len(t, resp.Leads, 6)
	for i := 1; i < len(resp.Leads); i++ {
		assert.False(t, resp.Leads[i-1].CreatedAt.Before(resp.Leads[i].CreatedAt))
	}

	// Test case 2: Source filter
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?source=Referral", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	// Test case 3: Case-insensitive substring search over company
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?search=initech", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	// Test case 4: Page past the end is empty but reports the true total
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?page=3&limit=10", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Total)
	assert.Empty(t, resp.Leads)

	// Test case 5: Non-positive pagination is rejected
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?page=0", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 6: A date-only endDate covers the whole end day
	today := time.Now().UTC().Format("2006-01-02")
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?endDate="+today, nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Total)

	// Test case 7: A startDate after creation excludes everything
	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads?startDate="+tomorrow, nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
}

func TestExportLeadsCSV(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	createLead(t, testCtx, models.CreateLeadRequest{
		Name:    "Acme",
		Email:   "sales@acme.test",
		Company: "Acme Corp",
		Source:  models.SourceWebsite,
	})

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads/export/csv", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "leads.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "Name,Email,Phone,Company,Source,Status,Created At", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Acme")
	assert.Contains(t, lines[1], "sales@acme.test")
}

func TestExportLeadsCSVSpansPages(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	ctx := context.Background()

	// Seed past one export batch straight through the repository
	total := 1005
	for i := 0; i < total; i++ {
		lead := &models.Lead{
			Name:   fmt.Sprintf("Lead %04d", i),
			Source: models.SourceWebsite,
			Status: models.StatusNew,
			UserID: testCtx.TestUserID,
		}
		activity := &models.Activity{
			Action:      models.ActionCreated,
			Description: "Created lead",
			UserID:      testCtx.TestUserID,
		}
		assert.NoError(t, testCtx.Repository.CreateLead(ctx, lead, activity))
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads/export/csv", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, total+1)
}
