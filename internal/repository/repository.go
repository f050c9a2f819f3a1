package repository

import (
	"context"
	"time"

	"github.com/leadtrack/server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Every lead/note/activity/reminder read or write is scoped by the owning
// user's id; a row owned by someone else is reported exactly like a row
// that does not exist.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Lead operations. A write and its audit records are applied
	// atomically: either the entity change and every supplied activity
	// become visible together, or none of them do.
	CreateLead(ctx context.Context, lead *models.Lead, activity *models.Activity) error
	GetLead(ctx context.Context, leadID, userID string) (*models.Lead, error)
	UpdateLead(ctx context.Context, lead *models.Lead, activities []*models.Activity) error
	ListLeads(ctx context.Context, userID string, filters models.LeadFilters) ([]models.Lead, int, error)

	// Note operations
	CreateNote(ctx context.Context, note *models.Note, activity *models.Activity) error
	ListNotes(ctx context.Context, leadID, userID string) ([]models.Note, error)

	// Activity operations
	ListRecentActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error)

	// Reminder operations
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminder(ctx context.Context, reminderID, userID string) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, reminder *models.Reminder) error
	ListReminders(ctx context.Context, userID string, filters models.ReminderFilters) ([]models.Reminder, error)

	// Aggregation operations
	CountLeadsBySource(ctx context.Context, userID string, from, to *time.Time) ([]models.SourceCount, error)
	CountLeadsByStatus(ctx context.Context, userID string) (map[string]int, int, error)
}
