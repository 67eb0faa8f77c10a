// Package client is the SDK used by the fitgrow CLI: a cached session, the
// dashboard display state and calls to the REST API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/auth"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/scanner"
	"github.com/goccy/go-json"
)

// DefaultTimeout bounds every outbound call
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotLoggedIn means no session is cached
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired means the cached token is past its expiry. The session is cleared.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError is a non-success response of the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the FitGrow API on behalf of one cached user
type Client struct {
	baseURL string
	http    *http.Client
	store   *Store
	now     func() time.Time

	mu        sync.Mutex
	session   *Session
	dashboard *Dashboard
}

// New restores the cached session and dashboard from store. baseURL includes
// the /api prefix.
func New(baseURL string, store *Store) (*Client, error) {
	sess, err := store.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	values, err := store.LoadDashboard()
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		store:     store,
		now:       time.Now,
		session:   sess,
		dashboard: NewDashboard(models.Goals{}),
	}
	if sess != nil {
		c.dashboard.SetGoals(sess.User.Goals)
	}
	c.dashboard.values = values
	return c, nil
}

// Session returns the cached session, nil when logged out
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Dashboard returns the display state
func (c *Client) Dashboard() *Dashboard {
	return c.dashboard
}

// SaveDashboard persists the displayed values
func (c *Client) SaveDashboard() error {
	return c.store.SaveDashboard(c.dashboard.Values())
}

type authResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expiresAt"`
	User      models.Profile `json:"user"`
}

// Signup registers a user and caches the new session
func (c *Client) Signup(ctx context.Context, username, email, password string) (*Session, error) {
	var resp authResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &resp, false); err != nil {
		return nil, err
	}
	return c.startSession(resp)
}

// Login authenticates and caches the session, replacing any previous one
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp, false); err != nil {
		return nil, err
	}
	return c.startSession(resp)
}

// Logout clears the cached session and zeroes the dashboard
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	c.dashboard.Reset()
	c.dashboard.SetGoals(models.Goals{})
	if err := c.store.ClearSession(); err != nil {
		return err
	}
	return c.SaveDashboard()
}

func (c *Client) startSession(resp authResponse) (*Session, error) {
	sess := &Session{Token: resp.Token, User: resp.User}
	if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
		sess.ExpiresAt = t
	} else if t, err := auth.ExpiryOf(resp.Token); err == nil {
		sess.ExpiresAt = t
	}
	if err := c.store.SaveSession(sess); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	c.dashboard.SetGoals(sess.User.Goals)
	return sess, nil
}

// Profile fetches the logged-in user
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var resp struct {
		User models.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateGoals changes the user's goals. Zero fields keep the current goal.
func (c *Client) UpdateGoals(ctx context.Context, goals models.Goals) (models.Goals, error) {
	var resp struct {
		Goals models.Goals `json:"goals"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/goals", goals, &resp, true); err != nil {
		return models.Goals{}, err
	}

	c.dashboard.SetGoals(resp.Goals)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.User.Goals = resp.Goals
		if err := c.store.SaveSession(c.session); err != nil {
			return resp.Goals, fmt.Errorf("cache goals: %w", err)
		}
	}
	return resp.Goals, nil
}

// ActivityRequest is one activity to log
type ActivityRequest struct {
	Type        models.ActivityType `json:"type"`
	Value       float64             `json:"value"`
	WorkoutType string              `json:"workoutType,omitempty"`
	Duration    *float64            `json:"duration,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Date        *time.Time          `json:"date,omitempty"`
}

// LogActivity stores one activity
func (c *Client) LogActivity(ctx context.Context, req ActivityRequest) (*models.Activity, error) {
	var resp struct {
		Activity models.Activity `json:"activity"`
	}
	if err := c.do(ctx, http.MethodPost, "/health/activity", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Activity, nil
}

// DailyStats fetches today's per-type sums
func (c *Client) DailyStats(ctx context.Context) (models.DailyStats, error) {
	var resp struct {
		Stats models.DailyStats `json:"stats"`
	}
	err := c.do(ctx, http.MethodGet, "/health/stats/daily", nil, &resp, true)
	return resp.Stats, err
}

// WeeklyStats fetches calorie sums by weekday for the trailing 7 days
func (c *Client) WeeklyStats(ctx context.Context) (models.WeeklyCalories, error) {
	var resp struct {
		WeeklyData models.WeeklyCalories `json:"weeklyData"`
	}
	err := c.do(ctx, http.MethodGet, "/health/stats/weekly", nil, &resp, true)
	return resp.WeeklyData, err
}

// MealRequest is one meal to log
type MealRequest struct {
	scanner.Meal
	MealType models.MealType `json:"mealType,omitempty"`
}

// LogMeal stores one nutrition entry
func (c *Client) LogMeal(ctx context.Context, req MealRequest) (*models.NutritionEntry, error) {
	var resp struct {
		Meal models.NutritionEntry `json:"meal"`
	}
	if err := c.do(ctx, http.MethodPost, "/nutrition/meal", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Meal, nil
}

// LogScannedFood logs an analysed dish scaled to portion
func (c *Client) LogScannedFood(ctx context.Context, a *scanner.Analysis, portion scanner.Portion) (*models.NutritionEntry, error) {
	return c.LogMeal(ctx, MealRequest{Meal: a.Scale(portion)})
}

// DailyNutrition fetches today's meals and totals
func (c *Client) DailyNutrition(ctx context.Context) (*models.DailyNutrition, error) {
	var resp models.DailyNutrition
	if err := c.do(ctx, http.MethodGet, "/nutrition/daily", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportAppleHealth uploads an export.xml
func (c *Client) ImportAppleHealth(ctx context.Context, export io.Reader) (models.ImportResult, error) {
	var resp models.ImportResult
	err := c.do(ctx, http.MethodPost, "/health/import", export, &resp, true)
	return resp, err
}

// Sync posts the displayed calories as one activity when positive, then
// reloads today's rollup into the dashboard.
func (c *Client) Sync(ctx context.Context) error {
	if c.Session() == nil {
		return ErrNotLoggedIn
	}
	if calories := c.dashboard.Value(models.ActivityCalories); calories > 0 {
		if _, err := c.LogActivity(ctx, ActivityRequest{Type: models.ActivityCalories, Value: calories}); err != nil {
			return fmt.Errorf("sync calories: %w", err)
		}
	}
	return c.Refresh(ctx)
}

// Refresh loads today's rollup into the dashboard
func (c *Client) Refresh(ctx context.Context) error {
	stats, err := c.DailyStats(ctx)
	if err != nil {
		return fmt.Errorf("load daily stats: %w", err)
	}
	c.dashboard.Apply(stats)
	return c.SaveDashboard()
}

// token returns the bearer token for a protected call. A known-expired
// session is cleared here without touching the network.
func (c *Client) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", ErrNotLoggedIn
	}
	if c.session.Expired(c.now()) {
		c.session = nil
		if err := c.store.ClearSession(); err != nil {
			return "", err
		}
		return "", ErrSessionExpired
	}
	return c.session.Token, nil
}

func (c *Client) dropSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	if err := c.store.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, protected bool) error {
	var token string
	if protected {
		t, err := c.token()
		if err != nil {
			return err
		}
		token = t
	}

	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader, contentType = b, "application/xml"
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || resp.StatusCode >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		apiErr := &APIError{Status: resp.StatusCode, Message: msg}
		if protected && resp.StatusCode == http.StatusUnauthorized {
			if err := c.dropSession(); err != nil {
				return errors.Join(apiErr, err)
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
