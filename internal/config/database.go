package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create leads table; status history lives in the lead row so a status
	// change and its history entry are one atomic write
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '',
			company VARCHAR(255) NOT NULL DEFAULT '',
			source VARCHAR(50) NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'New',
			tags TEXT[] NOT NULL DEFAULT '{}',
			status_history JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id)
		)
	`)
	if err != nil {
		return err
	}

	// Create notes table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id VARCHAR(36) PRIMARY KEY,
			text TEXT NOT NULL,
			lead_id VARCHAR(36) NOT NULL REFERENCES leads(id),
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create activities table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id VARCHAR(36) PRIMARY KEY,
			action VARCHAR(50) NOT NULL,
			description TEXT NOT NULL,
			lead_id VARCHAR(36) REFERENCES leads(id),
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			metadata JSONB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create reminders table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			due_date TIMESTAMP NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			lead_id VARCHAR(36) NOT NULL REFERENCES leads(id),
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_leads_user_created ON leads(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notes_lead_id ON notes(lead_id)",
		"CREATE INDEX IF NOT EXISTS idx_activities_user_created ON activities(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reminders_user_due ON reminders(user_id, due_date)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
