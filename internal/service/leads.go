package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
)

// CreateLead validates the request, seeds the status history with the
// initial status and records the creation in the activity log.
func (s *DefaultService) CreateLead(ctx context.Context, userID string, req models.CreateLeadRequest) (*models.Lead, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("lead name is required")
	}
	if !models.ValidSource(req.Source) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid source %q", req.Source))
	}

	status := req.Status
	if status == "" {
		status = models.StatusNew
	}
	if !models.ValidStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status))
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Source:  req.Source,
		Status:  status,
		Tags:    pq.StringArray(req.Tags),
		StatusHistory: models.StatusHistory{
			{Status: status, ChangedAt: now, ChangedBy: userID},
		},
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}

	activity := newActivity(userID, &lead.ID, models.ActionCreated,
		fmt.Sprintf("Created lead %q", lead.Name), nil)
	if err := s.repo.CreateLead(ctx, lead, activity); err != nil {
		return nil, storeErr("error creating lead", err)
	}

	s.metrics.IncLeadsCreated()
	return lead, nil
}

func (s *DefaultService) GetLead(ctx context.Context, userID, leadID string) (*models.Lead, error) {
	lead, err := s.repo.GetLead(ctx, leadID, userID)
	if err != nil {
		return nil, storeErr("error getting lead", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead not found")
	}

	return lead, nil
}

// UpdateLead applies a field patch to a lead the caller owns. A status
// change appends to the status history and is logged separately from plain
// field updates; updatedAt is refreshed either way. The whole mutation is a
// single write to the lead row.
func (s *DefaultService) UpdateLead(ctx context.Context, userID, leadID string, req models.UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.repo.GetLead(ctx, leadID, userID)
	if err != nil {
		return nil, storeErr("error getting lead", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead not found")
	}

	now := time.Now().UTC()
	fieldsChanged := false

	if req.Name != nil && *req.Name != lead.Name {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.Validation("lead name is required")
		}
		lead.Name = *req.Name
		fieldsChanged = true
	}
	if req.Email != nil && *req.Email != lead.Email {
		lead.Email = *req.Email
		fieldsChanged = true
	}
	if req.Phone != nil && *req.Phone != lead.Phone {
		lead.Phone = *req.Phone
		fieldsChanged = true
	}
	if req.Company != nil && *req.Company != lead.Company {
		lead.Company = *req.Company
		fieldsChanged = true
	}
	if req.Source != nil && *req.Source != lead.Source {
		if !models.ValidSource(*req.Source) {
			return nil, apperrors.Validation(fmt.Sprintf("invalid source %q", *req.Source))
		}
		lead.Source = *req.Source
		fieldsChanged = true
	}
	if req.Tags != nil {
		lead.Tags = pq.StringArray(*req.Tags)
		fieldsChanged = true
	}

	oldStatus := lead.Status
	statusChanged := false
	if req.Status != nil && *req.Status != lead.Status {
		if !models.ValidStatus(*req.Status) {
			return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", *req.Status))
		}
		// Any status may move to any other; there is no transition graph
		lead.Status = *req.Status
		lead.StatusHistory = append(lead.StatusHistory, models.StatusChange{
			Status:    *req.Status,
			ChangedAt: now,
			ChangedBy: userID,
		})
		statusChanged = true
	}

	activities := []*models.Activity{}
	if statusChanged {
		activities = append(activities, newActivity(userID, &lead.ID, models.ActionStatusChanged,
			fmt.Sprintf("Changed status of %q from %s to %s", lead.Name, oldStatus, lead.Status),
			models.Metadata{"from": oldStatus, "to": lead.Status}))
	}
	if fieldsChanged {
		activities = append(activities, newActivity(userID, &lead.ID, models.ActionUpdated,
			fmt.Sprintf("Updated lead %q", lead.Name), nil))
	}

	lead.UpdatedAt = now
	if err := s.repo.UpdateLead(ctx, lead, activities); err != nil {
		return nil, storeErr("error updating lead", err)
	}

	if statusChanged {
		s.metrics.IncStatusChanges()
	}

	return lead, nil
}

// ListLeads returns one page of the caller's leads, newest first, plus the
// total match count. A page past the end is an empty page, not an error.
func (s *DefaultService) ListLeads(ctx context.Context, userID string, filters models.LeadFilters) (*models.LeadListResponse, error) {
	if filters.Page == 0 {
		filters.Page = 1
	}
	if filters.PageSize == 0 {
		filters.PageSize = 10
	}
	if filters.Page < 0 || filters.PageSize < 0 {
		return nil, apperrors.Validation("page and pageSize must be positive")
	}

	leads, total, err := s.repo.ListLeads(ctx, userID, filters)
	if err != nil {
		return nil, storeErr("error listing leads", err)
	}

	return &models.LeadListResponse{
		Leads:    leads,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}
