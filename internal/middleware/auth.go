package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ducksnap/internal/util"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const UserContextKey = contextKey("user")

// SessionCookieName is the cookie holding the session JWT.
const SessionCookieName = "ducksnap_session"

// WithUserID stores an authenticated user id on ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserContextKey).(int64)
	return id, ok && id > 0
}

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// SessionUserID validates the request's session and returns its user id.
func SessionUserID(r *http.Request, jwtSecret string) (int64, error) {
	claims, err := util.ValidateJWT(TokenFromRequest(r), jwtSecret)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

func AuthMiddleware(jwtSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "auth").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TokenFromRequest(r) == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("Session token missing")
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Not authenticated"})
				return
			}
			userID, err := SessionUserID(r, jwtSecret)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid session token")
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Invalid or expired session"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
