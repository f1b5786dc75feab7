package workout

import (
	"context"

	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/errors"
)

// sqliteDefaultsRepository implements DefaultsStore.
type sqliteDefaultsRepository struct {
	baseRepository
}

func (r *sqliteDefaultsRepository) List(ctx context.Context) (_ map[string]ExerciseDefault, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_key, default_weight, reason, updated_at
		FROM exercise_defaults
		WHERE user_id = ?`, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		return nil, storeError("list defaults", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, storeError("close rows", closeErr))
		}
	}()

	defaults := make(map[string]ExerciseDefault)
	for rows.Next() {
		var (
			d         ExerciseDefault
			updatedAt string
		)
		if err = rows.Scan(&d.ExerciseKey, &d.DefaultWeight, &d.Reason, &updatedAt); err != nil {
			return nil, storeError("scan default", err)
		}
		if d.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, storeError("list defaults", err)
		}
		defaults[d.ExerciseKey] = d
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("rows error", err)
	}
	return defaults, nil
}

func (r *sqliteDefaultsRepository) Upsert(ctx context.Context, d ExerciseDefault) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercise_defaults (user_id, exercise_key, default_weight, reason, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, exercise_key) DO UPDATE SET
			default_weight = excluded.default_weight,
			reason = excluded.reason,
			updated_at = excluded.updated_at`,
		contexthelpers.AuthenticatedUserID(ctx), d.ExerciseKey, d.DefaultWeight, d.Reason,
		formatTimestamp(d.UpdatedAt)); err != nil {
		return storeError("upsert default", err)
	}
	return nil
}
