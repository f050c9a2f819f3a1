package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
	"github.com/leadtrack/server/internal/repository"
)

func newTestService(t *testing.T) (Service, string) {
	t.Helper()

	svc := NewDefaultService(repository.NewMemoryRepository(), "test-secret", nil)
	resp, err := svc.SignUp(context.Background(), models.RegisterRequest{
		Email:    "owner@example.com",
		Password: "testpassword",
		Name:     "Owner",
	})
	require.NoError(t, err)
	return svc, resp.User.ID
}

func TestCreateLeadSeedsHistory(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, userID, models.CreateLeadRequest{
		Name:   "Acme",
		Source: models.SourceWebsite,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNew, lead.Status)
	require.Len(t, lead.StatusHistory, 1)
	assert.Equal(t, models.StatusNew, lead.StatusHistory[0].Status)
	assert.Equal(t, userID, lead.StatusHistory[0].ChangedBy)
	assert.True(t, lead.StatusHistory[0].ChangedAt.Equal(lead.CreatedAt))
	assert.True(t, lead.UpdatedAt.Equal(lead.CreatedAt))
}

func TestCreateLeadValidation(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateLead(ctx, userID, models.CreateLeadRequest{Source: models.SourceWebsite})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateLead(ctx, userID, models.CreateLeadRequest{Name: "Acme", Source: "Carrier Pigeon"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateLead(ctx, userID, models.CreateLeadRequest{
		Name:   "Acme",
		Source: models.SourceWebsite,
		Status: "Frozen",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStatusHistoryGrowsPerTransition(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, userID, models.CreateLeadRequest{
		Name:   "Acme",
		Source: models.SourceWebsite,
	})
	require.NoError(t, err)

	transitions := []string{
		models.StatusContacted,
		models.StatusQualified,
		models.StatusConverted,
	}
	prevUpdated := lead.UpdatedAt
	for i, status := range transitions {
		status := status
		updated, err := svc.UpdateLead(ctx, userID, lead.ID, models.UpdateLeadRequest{Status: &status})
		require.NoError(t, err)

		require.Len(t, updated.StatusHistory, i+2)
		last := updated.StatusHistory[len(updated.StatusHistory)-1]
		assert.Equal(t, status, last.Status)
		assert.Equal(t, updated.Status, last.Status)
		assert.False(t, updated.UpdatedAt.Before(prevUpdated))
		prevUpdated = updated.UpdatedAt
	}

	// Writing the same status again does not grow the history
	same := models.StatusConverted
	updated, err := svc.UpdateLead(ctx, userID, lead.ID, models.UpdateLeadRequest{Status: &same})
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, len(transitions)+1)

	// Non-status edits leave the history alone
	name := "Acme Corp"
	updated, err = svc.UpdateLead(ctx, userID, lead.ID, models.UpdateLeadRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Len(t, updated.StatusHistory, len(transitions)+1)
}

// brokenLeadStore simulates a store that rejects the combined lead+activity
// write, the way an interrupted transaction would.
type brokenLeadStore struct {
	repository.Repository
}

func (s *brokenLeadStore) CreateLead(context.Context, *models.Lead, *models.Activity) error {
	return apperrors.ErrUnavailable
}

func TestCreateLeadFailedWriteLeavesNoTrace(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewDefaultService(&brokenLeadStore{Repository: repo}, "test-secret", nil)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, models.RegisterRequest{
		Email:    "owner@example.com",
		Password: "testpassword",
		Name:     "Owner",
	})
	require.NoError(t, err)
	userID := resp.User.ID

	_, err = svc.CreateLead(ctx, userID, models.CreateLeadRequest{
		Name:   "Acme",
		Source: models.SourceWebsite,
	})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	// Neither the lead nor its audit record may be visible
	leads, err := svc.ListLeads(ctx, userID, models.LeadFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, leads.Total)

	activities, err := svc.ListRecentActivities(ctx, userID, 10)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestUpdateLeadUnknown(t *testing.T) {
	svc, userID := newTestService(t)

	name := "Ghost"
	_, err := svc.UpdateLead(context.Background(), userID, "no-such-lead", models.UpdateLeadRequest{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListLeadsPaginationDefaults(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.CreateLead(ctx, userID, models.CreateLeadRequest{
			Name:   fmt.Sprintf("Lead %02d", i),
			Source: models.SourceReferral,
		})
		require.NoError(t, err)
	}

	// Zero values fall back to page 1, size 10
	resp, err := svc.ListLeads(ctx, userID, models.LeadFilters{})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Total)
	assert.Len(t, resp.Leads, 10)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)

	resp, err = svc.ListLeads(ctx, userID, models.LeadFilters{Page: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Leads, 2)

	_, err = svc.ListLeads(ctx, userID, models.LeadFilters{Page: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
