package handler

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/auth"
	"github.com/fitgrow/fitgrow-backend/internal/logging"
	"github.com/fitgrow/fitgrow-backend/internal/repository"
	"github.com/fitgrow/fitgrow-backend/internal/service"
	"github.com/goccy/go-json"
)

const testSecret = "handler-test-secret"

func setupServer(t *testing.T) (*httptest.Server, *repository.Memory, func()) {
	t.Helper()
	tokens, err := auth.NewTokenManager(testSecret, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	store := repository.NewMemory()
	log := logging.Discard()
	svc := service.NewService(store, tokens, log, time.Local)
	srv := httptest.NewServer(NewRouter(NewHandler(svc, log), RouterOptions{}))
	return srv, store, srv.Close
}

type response struct {
	status int
	body   map[string]interface{}
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&out.body); err != nil {
		t.Fatalf("%s %s: decoding body: %v", method, path, err)
	}
	return out
}

func signupToken(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	resp := call(t, srv, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "p",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %v", resp.status, resp.body)
	}
	token, _ := resp.body["token"].(string)
	if token == "" {
		t.Fatalf("signup returned no token: %v", resp.body)
	}
	return token
}

func object(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("value %v is not an object", v)
	}
	return m
}

func TestSignupAndProfile(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()

	resp := call(t, srv, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "a", "email": "a@x.com", "password": "p",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.status)
	}
	if resp.body["success"] != true {
		t.Errorf("signup success = %v", resp.body["success"])
	}
	if _, err := time.Parse(time.RFC3339, resp.body["expiresAt"].(string)); err != nil {
		t.Errorf("expiresAt %v is not RFC3339: %v", resp.body["expiresAt"], err)
	}
	user := object(t, resp.body["user"])
	goals := object(t, user["goals"])
	if goals["calories"] != 3000.0 || goals["steps"] != 10000.0 {
		t.Errorf("default goals = %v", goals)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash exposed in response")
	}

	token := resp.body["token"].(string)
	tokens, _ := auth.NewTokenManager(testSecret, time.Hour)
	userID, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse(token) error = %v", err)
	}
	if userID != user["id"] {
		t.Errorf("token user = %s, want %v", userID, user["id"])
	}

	profile := call(t, srv, http.MethodGet, "/api/auth/profile", token, nil)
	if profile.status != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", profile.status)
	}
	if got := object(t, profile.body["user"])["id"]; got != user["id"] {
		t.Errorf("profile id = %v, want %v", got, user["id"])
	}

	login := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "p"})
	if login.status != http.StatusOK || login.body["token"] == "" {
		t.Errorf("login = %d %v", login.status, login.body)
	}
}

func TestSignupDuplicate(t *testing.T) {
	srv, store, teardown := setupServer(t)
	defer teardown()
	signupToken(t, srv, "a")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"same username", map[string]string{"username": "a", "email": "other@x.com", "password": "p"}},
		{"same email", map[string]string{"username": "b", "email": "a@x.com", "password": "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, srv, http.MethodPost, "/api/auth/signup", "", tt.body)
			if resp.status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.status)
			}
			if resp.body["success"] != false || resp.body["message"] != "User already exists" {
				t.Errorf("body = %v", resp.body)
			}
		})
	}

	users, err := store.ListUsers(t.Context())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("stored users = %d, want 1", len(users))
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	signupToken(t, srv, "a")

	for _, body := range []map[string]string{
		{"email": "a@x.com", "password": "wrong"},
		{"email": "nobody@x.com", "password": "p"},
	} {
		resp := call(t, srv, http.MethodPost, "/api/auth/login", "", body)
		if resp.status != http.StatusUnauthorized || resp.body["message"] != "Invalid credentials" {
			t.Errorf("login(%v) = %d %v", body, resp.status, resp.body)
		}
	}
}

func TestDailyStepsScenario(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	for _, v := range []float64{4000, 1500} {
		resp := call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "steps", "value": v})
		if resp.status != http.StatusCreated {
			t.Fatalf("log activity status = %d, body = %v", resp.status, resp.body)
		}
		if object(t, resp.body["activity"])["value"] != v {
			t.Errorf("stored activity = %v", resp.body["activity"])
		}
	}

	first := call(t, srv, http.MethodGet, "/api/health/stats/daily", token, nil)
	if first.status != http.StatusOK {
		t.Fatalf("daily status = %d", first.status)
	}
	stats := object(t, first.body["stats"])
	want := map[string]float64{"steps": 5500, "calories": 0, "water": 0, "sleep": 0}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%s] = %v, want %v", k, stats[k], v)
		}
	}

	second := call(t, srv, http.MethodGet, "/api/health/stats/daily", token, nil)
	if object(t, second.body["stats"])["steps"] != stats["steps"] {
		t.Errorf("repeated daily stats differ: %v then %v", first.body, second.body)
	}
}

func TestCaloriesSumAndWeekly(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	for _, v := range []float64{120, 380, 50} {
		call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "calories", "value": v})
	}
	call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "water", "value": 2})

	daily := call(t, srv, http.MethodGet, "/api/health/stats/daily", token, nil)
	if got := object(t, daily.body["stats"])["calories"]; got != 550.0 {
		t.Errorf("daily calories = %v, want 550", got)
	}

	weekly := call(t, srv, http.MethodGet, "/api/health/stats/weekly", token, nil)
	week, ok := weekly.body["weeklyData"].([]interface{})
	if !ok || len(week) != 7 {
		t.Fatalf("weeklyData = %v, want 7 slots", weekly.body["weeklyData"])
	}
	today := int(time.Now().Weekday())
	for i, v := range week {
		want := 0.0
		if i == today {
			want = 550
		}
		if v != want {
			t.Errorf("weeklyData[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestListActivities(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	old := time.Now().AddDate(0, 0, -10).UTC().Format(time.RFC3339)
	call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "steps", "value": 10, "date": old})
	call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "steps", "value": 20})
	call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "workout", "value": 30, "workoutType": "running", "duration": 30})

	all := call(t, srv, http.MethodGet, "/api/health/activities", token, nil)
	list, _ := all.body["activities"].([]interface{})
	if len(list) != 3 {
		t.Fatalf("activities = %d, want 3", len(list))
	}

	steps := call(t, srv, http.MethodGet, "/api/health/activities?type=steps", token, nil)
	if list, _ := steps.body["activities"].([]interface{}); len(list) != 2 {
		t.Errorf("steps activities = %d, want 2", len(list))
	}

	start := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	end := time.Now().Add(time.Minute).UTC().Format(time.RFC3339)
	ranged := call(t, srv, http.MethodGet, "/api/health/activities?startDate="+start+"&endDate="+end, token, nil)
	if list, _ := ranged.body["activities"].([]interface{}); len(list) != 2 {
		t.Errorf("ranged activities = %d, want 2", len(list))
	}

	onlyStart := call(t, srv, http.MethodGet, "/api/health/activities?startDate="+start, token, nil)
	if list, _ := onlyStart.body["activities"].([]interface{}); len(list) != 3 {
		t.Errorf("activities with only startDate = %d, want 3", len(list))
	}

	bad := call(t, srv, http.MethodGet, "/api/health/activities?startDate=soon&endDate=later", token, nil)
	if bad.status != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", bad.status)
	}
}

func TestLogActivityValidation(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing value", map[string]interface{}{"type": "steps"}},
		{"unknown type", map[string]interface{}{"type": "yoga", "value": 1}},
		{"malformed json", `{"type":`},
		{"string value", map[string]interface{}{"type": "steps", "value": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, srv, http.MethodPost, "/api/health/activity", token, tt.body)
			if resp.status != http.StatusBadRequest || resp.body["success"] != false {
				t.Errorf("response = %d %v, want 400 error envelope", resp.status, resp.body)
			}
		})
	}

	negative := call(t, srv, http.MethodPost, "/api/health/activity", token, map[string]interface{}{"type": "calories", "value": -200})
	if negative.status != http.StatusCreated {
		t.Errorf("negative value status = %d, want 201", negative.status)
	}
}

func TestNutritionScenario(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	resp := call(t, srv, http.MethodPost, "/api/nutrition/meal", token, map[string]interface{}{
		"foodName": "Apple", "calories": 95, "fiber": 4,
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("log meal status = %d, body = %v", resp.status, resp.body)
	}
	meal := object(t, resp.body["meal"])
	if meal["mealType"] != "snack" || meal["foodName"] != "Apple" {
		t.Errorf("stored meal = %v", meal)
	}

	daily := call(t, srv, http.MethodGet, "/api/nutrition/daily", token, nil)
	totals := object(t, daily.body["totals"])
	if totals["calories"] != 95.0 || totals["fiber"] != 4.0 || totals["protein"] != 0.0 {
		t.Errorf("totals = %v", totals)
	}
	if meals, _ := daily.body["meals"].([]interface{}); len(meals) != 1 {
		t.Errorf("daily meals = %v", daily.body["meals"])
	}

	history := call(t, srv, http.MethodGet, "/api/nutrition/meals", token, nil)
	if meals, _ := history.body["meals"].([]interface{}); len(meals) != 1 {
		t.Errorf("meal history = %v", history.body["meals"])
	}

	missing := call(t, srv, http.MethodPost, "/api/nutrition/meal", token, map[string]interface{}{"calories": 10})
	if missing.status != http.StatusBadRequest {
		t.Errorf("meal without foodName status = %d, want 400", missing.status)
	}
}

func TestUpdateGoals(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	resp := call(t, srv, http.MethodPut, "/api/auth/goals", token, map[string]interface{}{"steps": 12000, "water": 0})
	if resp.status != http.StatusOK {
		t.Fatalf("goals status = %d, body = %v", resp.status, resp.body)
	}
	goals := object(t, resp.body["goals"])
	if goals["steps"] != 12000.0 || goals["water"] != 2.5 {
		t.Errorf("goals = %v", goals)
	}

	profile := call(t, srv, http.MethodGet, "/api/auth/profile", token, nil)
	if object(t, object(t, profile.body["user"])["goals"])["steps"] != 12000.0 {
		t.Errorf("profile goals not updated: %v", profile.body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/health/activities"},
		{http.MethodPost, "/api/health/activity"},
		{http.MethodGet, "/api/health/stats/daily"},
		{http.MethodGet, "/api/health/stats/weekly"},
		{http.MethodPost, "/api/health/import"},
		{http.MethodPost, "/api/nutrition/meal"},
		{http.MethodGet, "/api/nutrition/daily"},
		{http.MethodGet, "/api/nutrition/meals"},
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodPut, "/api/auth/goals"},
	}
	for _, tc := range []struct{ name, token string }{{"no header", ""}, {"bad token", "not-a-jwt"}} {
		for _, rt := range routes {
			t.Run(tc.name+" "+rt.method+" "+rt.path, func(t *testing.T) {
				resp := call(t, srv, rt.method, rt.path, tc.token, nil)
				if resp.status != http.StatusUnauthorized || resp.body["success"] != false {
					t.Errorf("response = %d %v, want 401 error envelope", resp.status, resp.body)
				}
				if _, ok := resp.body["activities"]; ok {
					t.Error("rejected response carries data")
				}
			})
		}
	}
}

func TestImportAppleHealth(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()
	token := signupToken(t, srv, "a")

	stamp := time.Now().Add(-time.Minute).Format("2006-01-02 15:04:05 -0700")
	export := `<HealthData>
 <Record type="HKQuantityTypeIdentifierStepCount" unit="count" startDate="` + stamp + `" endDate="` + stamp + `" value="2500"/>
 <Record type="HKQuantityTypeIdentifierBodyMass" unit="kg" startDate="` + stamp + `" endDate="` + stamp + `" value="70"/>
</HealthData>`

	resp := call(t, srv, http.MethodPost, "/api/health/import", token, export)
	if resp.status != http.StatusOK {
		t.Fatalf("import status = %d, body = %v", resp.status, resp.body)
	}
	if resp.body["imported"] != 1.0 || resp.body["skipped"] != 1.0 {
		t.Errorf("import result = %v", resp.body)
	}

	daily := call(t, srv, http.MethodGet, "/api/health/stats/daily", token, nil)
	if got := object(t, daily.body["stats"])["steps"]; got != 2500.0 {
		t.Errorf("daily steps after import = %v, want 2500", got)
	}

	bad := call(t, srv, http.MethodPost, "/api/health/import", token, "<gpx/>")
	if bad.status != http.StatusBadRequest {
		t.Errorf("foreign XML status = %d, want 400", bad.status)
	}
}

func TestHealthzAndNotFound(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()

	resp := call(t, srv, http.MethodGet, "/healthz", "", nil)
	if resp.status != http.StatusOK || resp.body["status"] != "ok" || resp.body["success"] != true {
		t.Errorf("healthz = %d %v", resp.status, resp.body)
	}

	missing := call(t, srv, http.MethodGet, "/api/unknown", "", nil)
	if missing.status != http.StatusNotFound || missing.body["success"] != false {
		t.Errorf("unknown route = %d %v", missing.status, missing.body)
	}
}

func TestAuthRateLimit(t *testing.T) {
	tokens, _ := auth.NewTokenManager("secret", time.Hour)
	log := logging.Discard()
	svc := service.NewService(repository.NewMemory(), tokens, log, time.Local)
	router := NewRouter(NewHandler(svc, log), RouterOptions{AuthRateLimit: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@x.com","password":"p"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusUnauthorized || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want 401 then 429", codes)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _, teardown := setupServer(t)
	defer teardown()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
