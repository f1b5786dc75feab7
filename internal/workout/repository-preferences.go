package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myrjola/liftplan/internal/contexthelpers"
)

// sqlitePreferencesRepository implements PreferencesStore.
type sqlitePreferencesRepository struct {
	baseRepository
}

// Get retrieves the preferences of the authenticated user.
func (r *sqlitePreferencesRepository) Get(ctx context.Context) (Preferences, error) {
	var prefs Preferences
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT plan_id FROM user_preferences WHERE user_id = ?`,
		contexthelpers.AuthenticatedUserID(ctx)).Scan(&prefs.PlanID)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, fmt.Errorf("preferences: %w", ErrNotFound)
	}
	if err != nil {
		return Preferences{}, storeError("get preferences", err)
	}
	return prefs, nil
}

// Set saves the preferences of the authenticated user.
func (r *sqlitePreferencesRepository) Set(ctx context.Context, prefs Preferences) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, plan_id)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET plan_id = excluded.plan_id`,
		contexthelpers.AuthenticatedUserID(ctx), prefs.PlanID); err != nil {
		return storeError("set preferences", err)
	}
	return nil
}
