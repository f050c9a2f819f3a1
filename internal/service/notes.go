package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
)

// AddNote attaches a note to a lead the caller owns and records the
// addition in the activity log.
func (s *DefaultService) AddNote(ctx context.Context, userID, leadID string, req models.CreateNoteRequest) (*models.Note, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.Validation("note text is required")
	}

	lead, err := s.repo.GetLead(ctx, leadID, userID)
	if err != nil {
		return nil, storeErr("error getting lead", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead not found")
	}

	note := &models.Note{
		Text:   req.Text,
		LeadID: lead.ID,
		UserID: userID,
	}
	activity := newActivity(userID, &lead.ID, models.ActionNoteAdded,
		fmt.Sprintf("Added note to %q", lead.Name), nil)
	if err := s.repo.CreateNote(ctx, note, activity); err != nil {
		return nil, storeErr("error creating note", err)
	}

	s.metrics.IncNotesAdded()
	return note, nil
}

// ListNotes returns a lead's notes in creation order, oldest first.
func (s *DefaultService) ListNotes(ctx context.Context, userID, leadID string) ([]models.Note, error) {
	lead, err := s.repo.GetLead(ctx, leadID, userID)
	if err != nil {
		return nil, storeErr("error getting lead", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead not found")
	}

	notes, err := s.repo.ListNotes(ctx, leadID, userID)
	if err != nil {
		return nil, storeErr("error listing notes", err)
	}

	return notes, nil
}

// newActivity builds an audit record for the caller's trail. It is internal:
// the four recognized actions are the only values ever passed in, and the
// repository persists it in the same transaction as the write it describes.
func newActivity(userID string, leadID *string, action, description string, metadata models.Metadata) *models.Activity {
	return &models.Activity{
		Action:      action,
		Description: description,
		LeadID:      leadID,
		UserID:      userID,
		Metadata:    metadata,
	}
}

// ListRecentActivities returns the caller's latest audit entries, newest
// first; limit defaults to 10.
func (s *DefaultService) ListRecentActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	activities, err := s.repo.ListRecentActivities(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("error listing activities", err)
	}

	return activities, nil
}
