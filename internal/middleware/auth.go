package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fitgrow/fitgrow-backend/internal/logging"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/service"
	"github.com/goccy/go-json"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token with 401.
// Lookup failures other than service.ErrUnauthorized are 500.
// The resolved user is stored in the request context.
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			user, err := authn.Authenticate(r.Context(), token)
			if errors.Is(err, service.ErrUnauthorized) {
				logging.FromContext(r.Context()).Debugf("Rejected token: %v", err)
				writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			if err != nil {
				logging.FromContext(r.Context()).Errorf("Failed to authenticate: %v", err)
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by AuthMiddleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser stores user in ctx the way AuthMiddleware does
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
