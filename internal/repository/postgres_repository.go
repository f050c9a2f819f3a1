package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/models"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.ErrConflict
	}

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

// insertActivity writes one audit record. It runs inside the same
// transaction as the entity write it describes.
func insertActivity(ctx context.Context, e sqlx.ExecerContext, activity *models.Activity) error {
	query := `
		INSERT INTO activities (id, action, description, lead_id, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	_, err := e.ExecContext(ctx, query,
		activity.ID, activity.Action, activity.Description, activity.LeadID,
		activity.UserID, activity.Metadata, activity.CreatedAt)

	return err
}

// Lead repository methods
func (r *PostgresRepository) CreateLead(ctx context.Context, lead *models.Lead, activity *models.Activity) error {
	query := `
		INSERT INTO leads (id, name, email, phone, company, source, status, tags, status_history, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

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

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Source, lead.Status, lead.Tags, lead.StatusHistory,
		lead.CreatedAt, lead.UpdatedAt, lead.UserID); err != nil {
		return err
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetLead(ctx context.Context, leadID, userID string) (*models.Lead, error) {
	// Ownership is part of the predicate: a foreign lead looks absent
	query := `SELECT * FROM leads WHERE id = $1 AND user_id = $2`

	var lead models.Lead
	err := r.db.GetContext(ctx, &lead, query, leadID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Lead not found
		}
		return nil, err
	}

	return &lead, nil
}

// UpdateLead writes the full lead row (fields, status and history) in one
// statement so concurrent writers cannot tear the status history apart, and
// commits the accompanying audit records in the same transaction.
func (r *PostgresRepository) UpdateLead(ctx context.Context, lead *models.Lead, activities []*models.Activity) error {
	query := `
		UPDATE leads
		SET name = $1, email = $2, phone = $3, company = $4, source = $5,
			status = $6, tags = $7, status_history = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`

	if lead.Tags == nil {
		lead.Tags = pq.StringArray{}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query,
		lead.Name, lead.Email, lead.Phone, lead.Company, lead.Source,
		lead.Status, lead.Tags, lead.StatusHistory, lead.UpdatedAt,
		lead.ID, lead.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	for _, activity := range activities {
		if err := insertActivity(ctx, tx, activity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) ListLeads(ctx context.Context, userID string, filters models.LeadFilters) ([]models.Lead, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR company ILIKE $%d)", n, n, n, n)
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM leads "+where, args...); err != nil {
		return nil, 0, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	args = append(args, filters.PageSize, offset)
	query := fmt.Sprintf("SELECT * FROM leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	leads := []models.Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// Note repository methods
func (r *PostgresRepository) CreateNote(ctx context.Context, note *models.Note, activity *models.Activity) error {
	query := `
		INSERT INTO notes (id, text, lead_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query,
		note.ID, note.Text, note.LeadID, note.UserID, note.CreatedAt); err != nil {
		return err
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) ListNotes(ctx context.Context, leadID, userID string) ([]models.Note, error) {
	query := `
		SELECT * FROM notes
		WHERE lead_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`

	notes := []models.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, leadID, userID); err != nil {
		return nil, err
	}

	return notes, nil
}

// Activity repository methods
func (r *PostgresRepository) ListRecentActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	query := `
		SELECT * FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, userID, limit); err != nil {
		return nil, err
	}

	return activities, nil
}

// Reminder repository methods
func (r *PostgresRepository) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, title, message, due_date, completed, lead_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID, reminder.Title, reminder.Message, reminder.DueDate,
		reminder.Completed, reminder.LeadID, reminder.UserID, reminder.CreatedAt)

	return err
}

func (r *PostgresRepository) GetReminder(ctx context.Context, reminderID, userID string) (*models.Reminder, error) {
	query := `SELECT * FROM reminders WHERE id = $1 AND user_id = $2`

	var reminder models.Reminder
	err := r.db.GetContext(ctx, &reminder, query, reminderID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Reminder not found
		}
		return nil, err
	}

	return &reminder, nil
}

func (r *PostgresRepository) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	query := `
		UPDATE reminders
		SET title = $1, message = $2, due_date = $3, completed = $4, lead_id = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		reminder.Title, reminder.Message, reminder.DueDate, reminder.Completed,
		reminder.LeadID, reminder.ID, reminder.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListReminders(ctx context.Context, userID string, filters models.ReminderFilters) ([]models.Reminder, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if filters.Date != nil {
		dayStart := time.Date(filters.Date.Year(), filters.Date.Month(), filters.Date.Day(), 0, 0, 0, 0, time.UTC)
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
		where += fmt.Sprintf(" AND due_date >= $%d AND due_date < $%d", len(args)-1, len(args))
	}
	if filters.Overdue {
		// Overdue-ness is derived at query time, never pre-materialized
		args = append(args, time.Now().UTC())
		where += fmt.Sprintf(" AND due_date < $%d AND completed = FALSE", len(args))
	}
	if filters.Completed != nil {
		args = append(args, *filters.Completed)
		where += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	query := fmt.Sprintf("SELECT * FROM reminders %s ORDER BY due_date ASC", where)

	reminders := []models.Reminder{}
	if err := r.db.SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, err
	}

	return reminders, nil
}

// Aggregation repository methods
func (r *PostgresRepository) CountLeadsBySource(ctx context.Context, userID string, from, to *time.Time) ([]models.SourceCount, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if from != nil {
		args = append(args, *from)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query := fmt.Sprintf("SELECT source, COUNT(*) AS count FROM leads %s GROUP BY source ORDER BY source", where)

	counts := []models.SourceCount{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *PostgresRepository) CountLeadsByStatus(ctx context.Context, userID string) (map[string]int, int, error) {
	query := `SELECT status, COUNT(*) AS count FROM leads WHERE user_id = $1 GROUP BY status`

	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, 0, err
	}

	byStatus := make(map[string]int, len(rows))
	total := 0
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}

	return byStatus, total, nil
}
