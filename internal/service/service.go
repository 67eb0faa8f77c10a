package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/auth"
	"github.com/fitgrow/fitgrow-backend/internal/integrations/applehealth"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// List queries never return more than this many records
const listLimit = 100

var (
	// ErrUnauthorized means the bearer token is missing, invalid or expired
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidCredentials means the email is unknown or the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists means the username or email is already registered
	ErrUserExists = errors.New("user already exists")
	// ErrValidation wraps every payload validation failure
	ErrValidation = errors.New("validation failed")
)

// Store is the persistence the service needs. Both repository.Repository and
// repository.Memory implement it.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	UpdateGoals(ctx context.Context, userID string, goals models.Goals) error
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateActivity(ctx context.Context, a *models.Activity) error
	CreateActivities(ctx context.Context, activities []models.Activity) error
	ListActivities(ctx context.Context, userID string, f models.ActivityFilter) ([]models.Activity, error)
	ActivitiesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Activity, error)

	CreateNutritionEntry(ctx context.Context, e *models.NutritionEntry) error
	ListNutritionEntries(ctx context.Context, userID string, f models.NutritionFilter) ([]models.NutritionEntry, error)
	NutritionEntriesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.NutritionEntry, error)
}

// Service handles business logic
type Service struct {
	store  Store
	tokens *auth.TokenManager
	health *applehealth.Parser
	log    *logrus.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService initializes a new service. Daily windows start at midnight in loc.
func NewService(store Store, tokens *auth.TokenManager, log *logrus.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:  store,
		tokens: tokens,
		health: applehealth.NewParser(log),
		log:    log,
		loc:    loc,
		now:    time.Now,
	}
}
