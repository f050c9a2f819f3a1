package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Lead sources and statuses are stored as plain strings; the allowed values
// are fixed here and validated at the service boundary.
const (
	SourceWebsite  = "Website"
	SourceReferral = "Referral"
	SourceAd       = "Ad"
	SourceOther    = "Other"

	StatusNew       = "New"
	StatusContacted = "Contacted"
	StatusQualified = "Qualified"
	StatusConverted = "Converted"
	StatusLost      = "Lost"
)

// LeadSources lists the valid values for Lead.Source.
var LeadSources = []string{SourceWebsite, SourceReferral, SourceAd, SourceOther}

// LeadStatuses lists the valid values for Lead.Status.
var LeadStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

// Activity actions. Only these four are ever recorded.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionNoteAdded     = "note_added"
)

// ValidSource reports whether s is an allowed lead source.
func ValidSource(s string) bool {
	for _, v := range LeadSources {
		if v == s {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is an allowed lead status.
func ValidStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// User represents a registered user in the system
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StatusChange is one entry in a lead's status history ledger.
type StatusChange struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy"`
}

// StatusHistory is the append-only sequence of statuses a lead has held.
// It is persisted as a JSON column so a status change and its history entry
// are always a single write to the lead row.
type StatusHistory []StatusChange

// Value implements driver.Valuer for persisting the history as JSON.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for reading the history back from JSON.
func (h *StatusHistory) Scan(src interface{}) error {
	if src == nil {
		*h = StatusHistory{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return fmt.Errorf("unsupported status history type %T", src)
}

// Lead represents a prospective customer owned by exactly one user
type Lead struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Email         string         `db:"email" json:"email,omitempty"`
	Phone         string         `db:"phone" json:"phone,omitempty"`
	Company       string         `db:"company" json:"company,omitempty"`
	Source        string         `db:"source" json:"source"`
	Status        string         `db:"status" json:"status"`
	Tags          pq.StringArray `db:"tags" json:"tags"`
	StatusHistory StatusHistory  `db:"status_history" json:"statusHistory"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
	UserID        string         `db:"user_id" json:"userId"`
}

// Note is an immutable free-text record attached to a lead
type Note struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	LeadID    string    `db:"lead_id" json:"leadId"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Metadata holds optional structured context on an activity record.
type Metadata map[string]interface{}

// Value implements driver.Valuer for persisting metadata as JSON.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading metadata back from JSON.
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported metadata type %T", src)
}

// Activity is a write-once audit record of something a user did
type Activity struct {
	ID          string    `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	Description string    `db:"description" json:"description"`
	LeadID      *string   `db:"lead_id" json:"leadId,omitempty"`
	UserID      string    `db:"user_id" json:"userId"`
	Metadata    Metadata  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Reminder is a due-date-bearing task attached to a lead
type Reminder struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	DueDate   time.Time `db:"due_date" json:"dueDate"`
	Completed bool      `db:"completed" json:"completed"`
	LeadID    string    `db:"lead_id" json:"leadId"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
