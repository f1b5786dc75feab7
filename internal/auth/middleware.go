package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/logging"
)

// AuthenticateMiddleware marks the request context as authenticated when the session belongs to an existing user.
// It must run inside sessionManager.LoadAndSave.
func (a *Authenticator) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := a.sessionManager.GetInt(ctx, string(userIDSessionKey))

		// User has not yet authenticated.
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		exists, err := a.userExists(ctx, userID)
		switch {
		case err != nil:
			a.logger.LogAttrs(ctx, slog.LevelError, "unable to fetch user", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		case !exists: // Do not authenticate deleted users.
			userID = 0
		default:
			r = contexthelpers.AuthenticateContext(r, userID)
		}

		// Hash token with sha256 to avoid leaking it in logs.
		tokenHash := sha256.Sum256([]byte(a.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			slog.Int("user_id", userID),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
