package service

import (
	"context"
	"strings"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
)

// CreateReminder attaches a due-date task to a lead the caller owns. A due
// date in the past is allowed; it simply surfaces as overdue right away.
func (s *DefaultService) CreateReminder(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("reminder title is required")
	}
	if req.DueDate.IsZero() {
		return nil, apperrors.Validation("reminder due date is required")
	}

	lead, err := s.repo.GetLead(ctx, req.LeadID, userID)
	if err != nil {
		return nil, storeErr("error getting lead", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead not found")
	}

	reminder := &models.Reminder{
		Title:     req.Title,
		Message:   req.Message,
		DueDate:   req.DueDate.UTC(),
		Completed: false,
		LeadID:    lead.ID,
		UserID:    userID,
	}
	if err := s.repo.CreateReminder(ctx, reminder); err != nil {
		return nil, storeErr("error creating reminder", err)
	}

	return reminder, nil
}

// UpdateReminder merges a patch into a reminder the caller owns. A new lead
// reference is re-checked against the caller before it is applied.
func (s *DefaultService) UpdateReminder(ctx context.Context, userID, reminderID string, req models.UpdateReminderRequest) (*models.Reminder, error) {
	reminder, err := s.repo.GetReminder(ctx, reminderID, userID)
	if err != nil {
		return nil, storeErr("error getting reminder", err)
	}
	if reminder == nil {
		return nil, apperrors.NotFound("reminder not found")
	}

	if req.LeadID != nil && *req.LeadID != reminder.LeadID {
		lead, err := s.repo.GetLead(ctx, *req.LeadID, userID)
		if err != nil {
			return nil, storeErr("error getting lead", err)
		}
		if lead == nil {
			return nil, apperrors.NotFound("lead not found")
		}
		reminder.LeadID = lead.ID
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.Validation("reminder title is required")
		}
		reminder.Title = *req.Title
	}
	if req.Message != nil {
		reminder.Message = *req.Message
	}
	if req.DueDate != nil {
		reminder.DueDate = req.DueDate.UTC()
	}
	if req.Completed != nil {
		// Completion is monotonic: once true it cannot be reverted
		if reminder.Completed && !*req.Completed {
			return nil, apperrors.Validation("a completed reminder cannot be reopened")
		}
		if *req.Completed && !reminder.Completed {
			reminder.Completed = true
			s.metrics.IncRemindersCompleted()
		}
	}

	if err := s.repo.UpdateReminder(ctx, reminder); err != nil {
		return nil, storeErr("error updating reminder", err)
	}

	return reminder, nil
}

// CompleteReminder flips the completed flag. Completing an already
// completed reminder is a no-op success.
func (s *DefaultService) CompleteReminder(ctx context.Context, userID, reminderID string) error {
	reminder, err := s.repo.GetReminder(ctx, reminderID, userID)
	if err != nil {
		return storeErr("error getting reminder", err)
	}
	if reminder == nil {
		return apperrors.NotFound("reminder not found")
	}

	if reminder.Completed {
		return nil
	}

	reminder.Completed = true
	if err := s.repo.UpdateReminder(ctx, reminder); err != nil {
		return storeErr("error updating reminder", err)
	}

	s.metrics.IncRemindersCompleted()
	return nil
}

// ListReminders returns the caller's reminders matching all supplied
// filters, ordered by due date.
func (s *DefaultService) ListReminders(ctx context.Context, userID string, filters models.ReminderFilters) ([]models.Reminder, error) {
	reminders, err := s.repo.ListReminders(ctx, userID, filters)
	if err != nil {
		return nil, storeErr("error listing reminders", err)
	}

	return reminders, nil
}
