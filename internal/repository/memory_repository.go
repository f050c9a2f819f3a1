package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
)

// MemoryRepository is an in-memory Repository implementation. It keeps the
// test suite independent of a running database; it intentionally favors
// clarity over performance.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]models.User
	leads      map[string]models.Lead
	notes      []models.Note
	activities []models.Activity
	reminders  map[string]models.Reminder
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[string]models.User),
		leads:     make(map[string]models.Lead),
		reminders: make(map[string]models.Reminder),
	}
}

// User repository methods
func (r *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperrors.ErrConflict
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if user, ok := r.users[id]; ok {
		u := user
		return &u, nil
	}
	return nil, nil
}

// appendActivity stores one audit record. The caller holds the write lock,
// so the entity change and its activities land together or not at all.
func (r *MemoryRepository) appendActivity(activity *models.Activity) {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	r.activities = append(r.activities, *activity)
}

// Lead repository methods
func (r *MemoryRepository) CreateLead(_ context.Context, lead *models.Lead, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Tags == nil {
		lead.Tags = pq.StringArray{}
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	if lead.UpdatedAt.IsZero() {
		lead.UpdatedAt = now
	}

	r.leads[lead.ID] = *lead
	r.appendActivity(activity)
	return nil
}

func (r *MemoryRepository) GetLead(_ context.Context, leadID, userID string) (*models.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if lead, ok := r.leads[leadID]; ok && lead.UserID == userID {
		l := lead
		return &l, nil
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateLead(_ context.Context, lead *models.Lead, activities []*models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.leads[lead.ID]
	if !ok || existing.UserID != lead.UserID {
		return apperrors.ErrNotFound
	}
	if lead.Tags == nil {
		lead.Tags = pq.StringArray{}
	}

	r.leads[lead.ID] = *lead
	for _, activity := range activities {
		r.appendActivity(activity)
	}
	return nil
}

func matchesSearch(lead models.Lead, search string) bool {
	s := strings.ToLower(search)
	for _, field := range []string{lead.Name, lead.Email, lead.Phone, lead.Company} {
		if strings.Contains(strings.ToLower(field), s) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) leadsForUser(userID string, from, to *time.Time) []models.Lead {
	leads := []models.Lead{}
	for _, lead := range r.leads {
		if lead.UserID != userID {
			continue
		}
		if from != nil && lead.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && lead.CreatedAt.After(*to) {
			continue
		}
		leads = append(leads, lead)
	}
	return leads
}

func (r *MemoryRepository) ListLeads(_ context.Context, userID string, filters models.LeadFilters) ([]models.Lead, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Lead{}
	for _, lead := range r.leadsForUser(userID, filters.StartDate, filters.EndDate) {
		if filters.Search != "" && !matchesSearch(lead, filters.Search) {
			continue
		}
		if filters.Status != "" && lead.Status != filters.Status {
			continue
		}
		if filters.Source != "" && lead.Source != filters.Source {
			continue
		}
		matched = append(matched, lead)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filters.Page - 1) * filters.PageSize
	if start >= total {
		return []models.Lead{}, total, nil
	}
	end := start + filters.PageSize
	if end > total {
		end = total
	}

	return append([]models.Lead{}, matched[start:end]...), total, nil
}

// Note repository methods
func (r *MemoryRepository) CreateNote(_ context.Context, note *models.Note, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	r.notes = append(r.notes, *note)
	r.appendActivity(activity)
	return nil
}

func (r *MemoryRepository) ListNotes(_ context.Context, leadID, userID string) ([]models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := []models.Note{}
	for _, note := range r.notes {
		if note.LeadID == leadID && note.UserID == userID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	return notes, nil
}

// Activity repository methods
func (r *MemoryRepository) ListRecentActivities(_ context.Context, userID string, limit int) ([]models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activities := []models.Activity{}
	for _, activity := range r.activities {
		if activity.UserID == userID {
			activities = append(activities, activity)
		}
	}
	// Stable sort keeps insertion order for equal timestamps
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})

	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}

	return activities, nil
}

// Reminder repository methods
func (r *MemoryRepository) CreateReminder(_ context.Context, reminder *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}

	r.reminders[reminder.ID] = *reminder
	return nil
}

func (r *MemoryRepository) GetReminder(_ context.Context, reminderID, userID string) (*models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reminder, ok := r.reminders[reminderID]; ok && reminder.UserID == userID {
		rem := reminder
		return &rem, nil
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateReminder(_ context.Context, reminder *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[reminder.ID]
	if !ok || existing.UserID != reminder.UserID {
		return apperrors.ErrNotFound
	}

	r.reminders[reminder.ID] = *reminder
	return nil
}

func (r *MemoryRepository) ListReminders(_ context.Context, userID string, filters models.ReminderFilters) ([]models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	reminders := []models.Reminder{}
	for _, reminder := range r.reminders {
		if reminder.UserID != userID {
			continue
		}
		if filters.Date != nil {
			dayStart := time.Date(filters.Date.Year(), filters.Date.Month(), filters.Date.Day(), 0, 0, 0, 0, time.UTC)
			if reminder.DueDate.Before(dayStart) || !reminder.DueDate.Before(dayStart.Add(24*time.Hour)) {
				continue
			}
		}
		if filters.Overdue && (reminder.Completed || !reminder.DueDate.Before(now)) {
			continue
		}
		if filters.Completed != nil && reminder.Completed != *filters.Completed {
			continue
		}
		reminders = append(reminders, reminder)
	}

	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].DueDate.Before(reminders[j].DueDate)
	})

	return reminders, nil
}

// Aggregation repository methods
func (r *MemoryRepository) CountLeadsBySource(_ context.Context, userID string, from, to *time.Time) ([]models.SourceCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bySource := map[string]int{}
	for _, lead := range r.leadsForUser(userID, from, to) {
		bySource[lead.Source]++
	}

	counts := []models.SourceCount{}
	for source, count := range bySource {
		counts = append(counts, models.SourceCount{Source: source, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Source < counts[j].Source
	})

	return counts, nil
}

func (r *MemoryRepository) CountLeadsByStatus(_ context.Context, userID string) (map[string]int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byStatus := map[string]int{}
	total := 0
	for _, lead := range r.leadsForUser(userID, nil, nil) {
		byStatus[lead.Status]++
		total++
	}

	return byStatus, total, nil
}
