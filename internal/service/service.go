package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/leadtrack/server/internal/apperrors"
	"github.com/leadtrack/server/internal/metrics"
	"github.com/leadtrack/server/internal/models"
	"github.com/leadtrack/server/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// Lead lifecycle
	CreateLead(ctx context.Context, userID string, req models.CreateLeadRequest) (*models.Lead, error)
	GetLead(ctx context.Context, userID, leadID string) (*models.Lead, error)
	UpdateLead(ctx context.Context, userID, leadID string, req models.UpdateLeadRequest) (*models.Lead, error)
	ListLeads(ctx context.Context, userID string, filters models.LeadFilters) (*models.LeadListResponse, error)

	// Notes and activities
	AddNote(ctx context.Context, userID, leadID string, req models.CreateNoteRequest) (*models.Note, error)
	ListNotes(ctx context.Context, userID, leadID string) ([]models.Note, error)
	ListRecentActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error)

	// Reminders
	CreateReminder(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, userID, reminderID string, req models.UpdateReminderRequest) (*models.Reminder, error)
	CompleteReminder(ctx context.Context, userID, reminderID string) error
	ListReminders(ctx context.Context, userID string, filters models.ReminderFilters) ([]models.Reminder, error)

	// Analytics
	LeadsBySource(ctx context.Context, userID, period string) ([]models.SourceCount, error)
	LeadMetrics(ctx context.Context, userID string) (*models.LeadMetrics, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	metrics       *metrics.Metrics
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string, m *metrics.Metrics) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 7 * 24 * time.Hour, // 7 days token validity
		metrics:       m,
	}
}

// storeErr translates repository failures into typed domain errors. Sentinel
// errors keep their kind; anything else means the store could not serve us.
func storeErr(message string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(message)
	}
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.Conflict(message)
	}
	return apperrors.Unavailable(message, err)
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("error checking user existence", err)
	}

	if existingUser != nil {
		return nil, apperrors.Conflict("user with this email already exists")
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Unavailable("error hashing password", err)
	}

	// Create the user
	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("user with this email already exists")
		}
		return nil, storeErr("error creating user", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, apperrors.Unavailable("error generating token", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		User:      &models.UserProfile{ID: user.ID, Name: user.Name, Email: user.Email},
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	// Get the user
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("error getting user", err)
	}

	if user == nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	// Generate JWT token
	token, err := s.generateJWT(user)
	if err != nil {
		return nil, apperrors.Unavailable("error generating token", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		User:      &models.UserProfile{ID: user.ID, Name: user.Name, Email: user.Email},
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr("error getting user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	return &models.UserProfile{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":   user.ID, // subject
		"email": user.Email,
		"exp":   expirationTime.Unix(),
		"iat":   time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
