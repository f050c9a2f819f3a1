package models

import "time"

// Request models
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateLeadRequest struct {
	Name    string   `json:"name" binding:"required"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Source  string   `json:"source" binding:"required"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

// UpdateLeadRequest is a patch: nil fields are left untouched.
type UpdateLeadRequest struct {
	Name    *string   `json:"name"`
	Email   *string   `json:"email"`
	Phone   *string   `json:"phone"`
	Company *string   `json:"company"`
	Source  *string   `json:"source"`
	Status  *string   `json:"status"`
	Tags    *[]string `json:"tags"`
}

type CreateNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

type CreateReminderRequest struct {
	Title   string    `json:"title" binding:"required"`
	Message string    `json:"message" binding:"required"`
	DueDate time.Time `json:"dueDate" binding:"required"`
	LeadID  string    `json:"leadId" binding:"required"`
}

// UpdateReminderRequest is a patch: nil fields are left untouched.
type UpdateReminderRequest struct {
	Title     *string    `json:"title"`
	Message   *string    `json:"message"`
	DueDate   *time.Time `json:"dueDate"`
	Completed *bool      `json:"completed"`
	LeadID    *string    `json:"leadId"`
}

// Filter models
type LeadFilters struct {
	Search    string
	Status    string
	Source    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

type ReminderFilters struct {
	Date      *time.Time // match by calendar day
	Overdue   bool       // dueDate before now and not completed
	Completed *bool      // nil = no filter
}

// Response models
type AuthResponse struct {
	Status    string       `json:"status"`
	User      *UserProfile `json:"user,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresIn int          `json:"expiresIn,omitempty"`
}

// UserProfile is the public view of a user (no credential hash).
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LeadListResponse struct {
	Leads    []Lead `json:"leads"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// SourceCount is one row of the leads-by-source breakdown.
type SourceCount struct {
	Source string `db:"source" json:"source"`
	Count  int    `db:"count" json:"count"`
}

// LeadMetrics is the summary returned by the analytics endpoint.
type LeadMetrics struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	ConversionRate float64        `json:"conversionRate"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
