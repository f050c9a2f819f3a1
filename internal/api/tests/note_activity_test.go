package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadtrack/server/internal/api/testutils"
	"github.com/leadtrack/server/internal/models"
)

func TestNotesAndActivityTrail(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	lead := createLead(t, testCtx, models.CreateLeadRequest{Name: "Acme", Source: models.SourceWebsite})

	// Move the lead to Qualified, then note the call
	status := models.StatusQualified
	w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/leads/"+lead.ID,
		models.UpdateLeadRequest{Status: &status},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads/"+lead.ID+"/notes",
		models.CreateNoteRequest{Text: "Called, interested"},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusCreated, w.Code)

	var note models.Note
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	assert.Equal(t, lead.ID, note.LeadID)
	assert.Equal(t, testCtx.TestUserID, note.UserID)

	// The lead has exactly one note
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/leads/"+lead.ID+"/notes", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	var notes []models.Note
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	assert.Len(t, notes, 1)
	assert.Equal(t, "Called, interested", notes[0].Text)

	// The audit trail holds created, status_changed and note_added, newest first
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/activities", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	var activities []models.Activity
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	if assert.Len(t, activities, 3) {
		assert.Equal(t, models.ActionNoteAdded, activities[0].Action)
		assert.Equal(t, models.ActionStatusChanged, activities[1].Action)
		assert.Equal(t, models.ActionCreated, activities[2].Action)
		assert.Equal(t, models.StatusNew, activities[1].Metadata["from"])
		assert.Equal(t, models.StatusQualified, activities[1].Metadata["to"])
	}

	// Limit caps the trail
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/activities?limit=2", nil,
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	assert.Len(t, activities, 2)
}

func TestAddNoteValidation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	lead := createLead(t, testCtx, models.CreateLeadRequest{Name: "Acme", Source: models.SourceWebsite})

	// Empty note body is rejected
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads/"+lead.ID+"/notes",
		models.CreateNoteRequest{Text: ""},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown lead
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/leads/no-such-lead/notes",
		models.CreateNoteRequest{Text: "hello"},
		testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityIsolation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	createLead(t, testCtx, models.CreateLeadRequest{Name: "Mine", Source: models.SourceAd})

	_, otherToken := testutils.CreateTestUser(t, testCtx.Repository, "other@example.com", "Other User")

	// The second user's trail is empty; activities never leak across users
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/activities", nil,
		testutils.AuthHeaders(otherToken))
	assert.Equal(t, http.StatusOK, w.Code)

	var activities []models.Activity
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	assert.Empty(t, activities)
}
