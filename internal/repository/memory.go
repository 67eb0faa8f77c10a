package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process store with the same semantics as Repository.
// It backs STORE=memory and the service and handler tests.
type Memory struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]models.User
	activities []models.Activity
	nutrition  []models.NutritionEntry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		now:   time.Now,
		users: make(map[string]models.User),
	}
}

// CreateUser stores a new user, enforcing unique username and email
func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

// FindUserByEmail retrieves a user by email
func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// FindUserByID retrieves a user by id
func (m *Memory) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// UserExists reports whether a user already holds the username or the email
func (m *Memory) UserExists(_ context.Context, username, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// UpdateGoals replaces the goal thresholds of a user
func (m *Memory) UpdateGoals(_ context.Context, userID string, goals models.Goals) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Goals = goals
	u.UpdatedAt = m.now()
	m.users[userID] = u
	return nil
}

// ListUsers returns every user ordered by creation time
func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// CreateActivity appends one activity
func (m *Memory) CreateActivity(_ context.Context, a *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.activities = append(m.activities, *a)
	return nil
}

// CreateActivities appends a batch of activities
func (m *Memory) CreateActivities(_ context.Context, activities []models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range activities {
		if activities[i].ID == "" {
			activities[i].ID = uuid.NewString()
		}
	}
	m.activities = append(m.activities, activities...)
	return nil
}

// ListActivities returns a user's activities newest first
func (m *Memory) ListActivities(_ context.Context, userID string, f models.ActivityFilter) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Activity{}
	for _, a := range m.activities {
		if a.UserID != userID {
			continue
		}
		if f.Start != nil && f.End != nil && (a.Date.Before(*f.Start) || a.Date.After(*f.End)) {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		out = append(out, a)
	}
	sortActivities(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ActivitiesBetween returns a user's activities with from <= date <= to
func (m *Memory) ActivitiesBetween(_ context.Context, userID string, from, to time.Time) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Activity{}
	for _, a := range m.activities {
		if a.UserID == userID && inWindow(a.Date, from, to) {
			out = append(out, a)
		}
	}
	sortActivities(out)
	return out, nil
}

// CreateNutritionEntry appends one nutrition entry
func (m *Memory) CreateNutritionEntry(_ context.Context, e *models.NutritionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.nutrition = append(m.nutrition, *e)
	return nil
}

// ListNutritionEntries returns a user's entries newest first
func (m *Memory) ListNutritionEntries(_ context.Context, userID string, f models.NutritionFilter) ([]models.NutritionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.NutritionEntry{}
	for _, e := range m.nutrition {
		if e.UserID != userID {
			continue
		}
		if f.Start != nil && f.End != nil && (e.Date.Before(*f.Start) || e.Date.After(*f.End)) {
			continue
		}
		out = append(out, e)
	}
	sortNutrition(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// NutritionEntriesBetween returns a user's entries with from <= date <= to
func (m *Memory) NutritionEntriesBetween(_ context.Context, userID string, from, to time.Time) ([]models.NutritionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.NutritionEntry{}
	for _, e := range m.nutrition {
		if e.UserID == userID && inWindow(e.Date, from, to) {
			out = append(out, e)
		}
	}
	sortNutrition(out)
	return out, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func sortActivities(a []models.Activity) {
	sort.SliceStable(a, func(i, j int) bool { return a[i].Date.After(a[j].Date) })
}

func sortNutrition(e []models.NutritionEntry) {
	sort.SliceStable(e, func(i, j int) bool { return e[i].Date.After(e[j].Date) })
}
