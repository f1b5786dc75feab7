package workout

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/errors"
)

// sqliteOverrideRepository implements OverrideStore.
type sqliteOverrideRepository struct {
	baseRepository
}

func (r *sqliteOverrideRepository) ListRange(ctx context.Context, from, to time.Time) (
	_ map[string]Override, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT date, workout_id, created_at
		FROM schedule_overrides
		WHERE user_id = ? AND date BETWEEN ? AND ?`,
		contexthelpers.AuthenticatedUserID(ctx), DateKey(from), DateKey(to))
	if err != nil {
		return nil, storeError("list overrides", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, storeError("close rows", closeErr))
		}
	}()

	overrides := make(map[string]Override)
	for rows.Next() {
		var (
			o         Override
			date      string
			createdAt string
		)
		if err = rows.Scan(&date, &o.WorkoutID, &createdAt); err != nil {
			return nil, storeError("scan override", err)
		}
		if o.Date, err = parseDate(date); err != nil {
			return nil, storeError("list overrides", err)
		}
		if o.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, storeError("list overrides", err)
		}
		overrides[date] = o
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("rows error", err)
	}
	return overrides, nil
}

// SetMany writes every override or none of them.
func (r *sqliteOverrideRepository) SetMany(ctx context.Context, overrides []Override) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, o := range overrides {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO schedule_overrides (user_id, date, workout_id, created_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (user_id, date) DO UPDATE SET
					workout_id = excluded.workout_id,
					created_at = excluded.created_at`,
				userID, DateKey(o.Date), o.WorkoutID, formatTimestamp(o.CreatedAt)); err != nil {
				return fmt.Errorf("upsert override %s: %w", DateKey(o.Date), err)
			}
		}
		return nil
	}); err != nil {
		return storeError("set overrides", err)
	}
	return nil
}
