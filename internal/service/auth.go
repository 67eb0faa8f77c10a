package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/metrics"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/repository"
	"github.com/fitgrow/fitgrow-backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the payload of POST /auth/signup
type SignupInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the payload of POST /auth/login
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoalsInput is the payload of PUT /auth/goals. Zero fields keep the current goal.
type GoalsInput struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Steps    float64 `json:"steps" validate:"gte=0"`
	Water    float64 `json:"water" validate:"gte=0"`
	Sleep    float64 `json:"sleep" validate:"gte=0"`
}

// Session is the result of a successful signup or login
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Signup creates a new user with hashed password and default goals
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	exists, err := s.store.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Goals:        models.DefaultGoals(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	metrics.Signups.Inc()
	s.log.Infof("User registered: %s", user.Email)
	return session, nil
}

// Login authenticates a user and returns a bearer token
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.store.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.LoginFailures.Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		metrics.LoginFailures.Inc()
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.log.Infof("User logged in: %s", user.Email)
	return session, nil
}

// Authenticate resolves a bearer token to its user
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthorized, userID)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateGoals applies the non-zero fields of in to the user's goals
func (s *Service) UpdateGoals(ctx context.Context, user *models.User, in GoalsInput) (models.Goals, error) {
	if err := validation.Struct(&in); err != nil {
		return models.Goals{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	goals := user.Goals.Merge(models.Goals{
		Calories: in.Calories,
		Steps:    in.Steps,
		Water:    in.Water,
		Sleep:    in.Sleep,
	})
	if err := s.store.UpdateGoals(ctx, user.ID, goals); err != nil {
		return models.Goals{}, err
	}
	user.Goals = goals
	s.log.Infof("Goals updated for user %s", user.ID)
	return goals, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}
