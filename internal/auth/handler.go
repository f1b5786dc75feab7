// Package auth keeps the authenticated user in a cookie session.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/liftplan/internal/errors"
	"github.com/myrjola/liftplan/internal/sqlite"
)

type sessionKey string

const userIDSessionKey = sessionKey("user_id")

const maxDisplayNameLength = 64

// ErrInvalidDisplayName is returned when registering with an empty or too long display name.
var ErrInvalidDisplayName = errors.NewSentinel("invalid display name")

type Authenticator struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	database       *sqlite.Database
}

func New(logger *slog.Logger, sessionManager *scs.SessionManager, dbs *sqlite.Database) *Authenticator {
	return &Authenticator{
		logger:         logger,
		sessionManager: sessionManager,
		database:       dbs,
	}
}

// Register creates a user and logs the current session in as that user.
func (a *Authenticator) Register(ctx context.Context, displayName string) (int, error) {
	displayName = strings.TrimSpace(displayName)
	if n := utf8.RuneCountInString(displayName); n == 0 || n > maxDisplayNameLength {
		return 0, fmt.Errorf("%w: must be 1-%d characters", ErrInvalidDisplayName, maxDisplayNameLength)
	}
	userID, err := a.insertUser(ctx, displayName)
	if err != nil {
		return 0, err
	}
	if err = a.login(ctx, userID); err != nil {
		return 0, err
	}
	a.logger.LogAttrs(ctx, slog.LevelInfo, "registered user", slog.Int("user_id", userID))
	return userID, nil
}

func (a *Authenticator) login(ctx context.Context, userID int) error {
	// Renew the token on privilege change to prevent session fixation.
	if err := a.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	a.sessionManager.Put(ctx, string(userIDSessionKey), userID)
	return nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	a.sessionManager.Remove(ctx, string(userIDSessionKey))
	return nil
}

// DeleteUser removes the user and everything they own, then ends the session.
func (a *Authenticator) DeleteUser(ctx context.Context, userID int) error {
	if err := a.deleteUser(ctx, userID); err != nil {
		return err
	}
	if err := a.sessionManager.Destroy(ctx); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
