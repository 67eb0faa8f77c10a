package handler

import (
	"net/http"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the HTTP surface around the handlers
type RouterOptions struct {
	CORSOrigins []string
	// AuthRateLimit is the per-IP requests per minute on signup and login; 0 disables it
	AuthRateLimit int
}

// NewRouter mounts every route. API routes live under /api.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})
	r.Use(middleware.RequestID(h.log), middleware.AccessLog, middleware.Metrics)

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	authMW := middleware.AuthMiddleware(h.svc)

	// Public routes
	limit := func(next http.Handler) http.Handler { return next }
	if opts.AuthRateLimit > 0 {
		limit = httprate.LimitByIP(opts.AuthRateLimit, time.Minute)
	}
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.Handle("/signup", limit(http.HandlerFunc(h.Signup))).Methods(http.MethodPost)
	authRouter.Handle("/login", limit(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	// Protected routes
	authRouter.Handle("/profile", authMW(http.HandlerFunc(h.Profile))).Methods(http.MethodGet)
	authRouter.Handle("/goals", authMW(http.HandlerFunc(h.UpdateGoals))).Methods(http.MethodPut)

	health := api.PathPrefix("/health").Subrouter()
	health.Use(authMW)
	health.HandleFunc("/activity", h.LogActivity).Methods(http.MethodPost)
	health.HandleFunc("/activities", h.ListActivities).Methods(http.MethodGet)
	health.HandleFunc("/stats/daily", h.DailyStats).Methods(http.MethodGet)
	health.HandleFunc("/stats/weekly", h.WeeklyStats).Methods(http.MethodGet)
	health.HandleFunc("/import", h.ImportAppleHealth).Methods(http.MethodPost)

	nutrition := api.PathPrefix("/nutrition").Subrouter()
	nutrition.Use(authMW)
	nutrition.HandleFunc("/meal", h.LogMeal).Methods(http.MethodPost)
	nutrition.HandleFunc("/daily", h.DailyNutrition).Methods(http.MethodGet)
	nutrition.HandleFunc("/meals", h.ListMeals).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})(r)
}
