package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"social-backend/internal/apperrors"
	"social-backend/internal/models"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userKey contextKey = "user"

// TokenVerifier resolves a session token to the user ID it was issued for
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the account a session belongs to
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware guards routes with the session cookie. On success the
// sanitized account is attached to the request context.
func AuthMiddleware(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(services.CookieName)
			if err != nil || cookie.Value == "" {
				authFailuresTotal.WithLabelValues("no_token").Inc()
				respondError(w, apperrors.ErrNoToken)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				authFailuresTotal.WithLabelValues("invalid_token").Inc()
				respondError(w, apperrors.ErrInvalidToken)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				appErr := apperrors.From(err)
				if appErr.Kind == apperrors.KindInternal {
					log.Error().Err(err).Str("user_id", userID).Msg("Failed to load session user")
				}
				respondError(w, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated account, nil outside guarded routes
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, err *apperrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Kind.StatusCode())
	json.NewEncoder(w).Encode(map[string]string{"error": err.Message})
}
