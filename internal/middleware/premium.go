package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// PremiumChecker reports whether a user currently holds premium access.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

// RequirePremium rejects non-premium callers with 403 and an upgrade prompt.
// It must run after AuthMiddleware.
func RequirePremium(checker PremiumChecker, upgradePrompt string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("middleware", "premium").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Not authenticated"})
				return
			}
			premium, err := checker.IsPremium(r.Context(), userID)
			if err != nil {
				logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to check premium status")
				writeError(w, http.StatusInternalServerError, map[string]any{"error": "Failed to check subscription"})
				return
			}
			if !premium {
				writeError(w, http.StatusForbidden, map[string]any{
					"error":           "Premium subscription required",
					"upgradeRequired": true,
					"upgradePrompt":   upgradePrompt,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
