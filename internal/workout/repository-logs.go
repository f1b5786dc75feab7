package workout

import (
	"context"
	"database/sql"
	"time"

	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/errors"
)

// sqliteLogRepository implements LogStore.
type sqliteLogRepository struct {
	baseRepository
}

// UpsertBodyweight keeps one entry per date, the latest wins.
func (r *sqliteLogRepository) UpsertBodyweight(ctx context.Context, entry BodyweightEntry) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO bodyweight_entries (user_id, date, weight_kg)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = excluded.weight_kg`,
		contexthelpers.AuthenticatedUserID(ctx), DateKey(entry.Date), entry.WeightKg); err != nil {
		return storeError("upsert bodyweight", err)
	}
	return nil
}

func (r *sqliteLogRepository) ListBodyweight(ctx context.Context, since time.Time) (_ []BodyweightEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT date, weight_kg
		FROM bodyweight_entries
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC`, contexthelpers.AuthenticatedUserID(ctx), DateKey(since))
	if err != nil {
		return nil, storeError("list bodyweight", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, storeError("close rows", closeErr))
		}
	}()

	var entries []BodyweightEntry
	for rows.Next() {
		var (
			e    BodyweightEntry
			date string
		)
		if err = rows.Scan(&date, &e.WeightKg); err != nil {
			return nil, storeError("scan bodyweight", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, storeError("list bodyweight", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("rows error", err)
	}
	return entries, nil
}

func (r *sqliteLogRepository) CreateCardio(ctx context.Context, c CardioSession) (CardioSession, error) {
	distance := sql.NullFloat64{Float64: 0, Valid: false}
	if c.DistanceKm != nil {
		distance = sql.NullFloat64{Float64: *c.DistanceKm, Valid: true}
	}
	if err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO cardio_sessions (user_id, date, kind, minutes, distance_km)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		contexthelpers.AuthenticatedUserID(ctx), DateKey(c.Date), c.Kind, c.Minutes, distance).Scan(&c.ID); err != nil {
		return CardioSession{}, storeError("create cardio", err)
	}
	return c, nil
}

func (r *sqliteLogRepository) ListCardio(ctx context.Context) (_ []CardioSession, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, date, kind, minutes, distance_km
		FROM cardio_sessions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		return nil, storeError("list cardio", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, storeError("close rows", closeErr))
		}
	}()

	var sessions []CardioSession
	for rows.Next() {
		var (
			c        CardioSession
			date     string
			distance sql.NullFloat64
		)
		if err = rows.Scan(&c.ID, &date, &c.Kind, &c.Minutes, &distance); err != nil {
			return nil, storeError("scan cardio", err)
		}
		if c.Date, err = parseDate(date); err != nil {
			return nil, storeError("list cardio", err)
		}
		if distance.Valid {
			km := distance.Float64
			c.DistanceKm = &km
		}
		sessions = append(sessions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, storeError("rows error", err)
	}
	return sessions, nil
}
