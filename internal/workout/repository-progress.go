package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myrjola/liftplan/internal/contexthelpers"
)

// sqliteProgressRepository implements ProgressStore.
type sqliteProgressRepository struct {
	baseRepository
}

// errStaleProgress rolls back the completion marker when another request moved the progress first.
var errStaleProgress = errors.New("progress changed concurrently")

type rowScanner interface {
	Scan(dest ...any) error
}

const progressQuery = `
	SELECT plan_id, current_week, previous_week, cycle, start_date, week_started_on, last_updated
	FROM program_progress
	WHERE user_id = ? AND plan_id = ?`

func scanProgress(row rowScanner) (ProgramProgress, error) {
	var (
		p             ProgramProgress
		previousWeek  sql.NullInt64
		startDate     string
		weekStartedOn string
		lastUpdated   string
		err           error
	)
	if err = row.Scan(&p.PlanID, &p.CurrentWeek, &previousWeek, &p.Cycle, &startDate, &weekStartedOn,
		&lastUpdated); err != nil {
		return ProgramProgress{}, err //nolint:wrapcheck // callers check for sql.ErrNoRows.
	}
	if previousWeek.Valid {
		week := int(previousWeek.Int64)
		p.PreviousWeek = &week
	}
	if p.StartDate, err = parseDate(startDate); err != nil {
		return ProgramProgress{}, err
	}
	if p.WeekStartedOn, err = parseDate(weekStartedOn); err != nil {
		return ProgramProgress{}, err
	}
	if p.LastUpdated, err = parseTimestamp(lastUpdated); err != nil {
		return ProgramProgress{}, err
	}
	return p, nil
}

func (r *sqliteProgressRepository) Get(ctx context.Context, planID string) (ProgramProgress, error) {
	p, err := scanProgress(r.db.ReadOnly.QueryRowContext(ctx, progressQuery,
		contexthelpers.AuthenticatedUserID(ctx), planID))
	if errors.Is(err, sql.ErrNoRows) {
		return ProgramProgress{}, fmt.Errorf("progress of %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return ProgramProgress{}, storeError("get progress", err)
	}
	return p, nil
}

// Init keeps existing progress untouched so that concurrent first visits agree on one start date.
func (r *sqliteProgressRepository) Init(ctx context.Context, progress ProgramProgress) (ProgramProgress, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	var stored ProgramProgress
	if err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO program_progress (user_id, plan_id, current_week, previous_week, cycle, start_date,
			                              week_started_on, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, plan_id) DO NOTHING`,
			userID, progress.PlanID, progress.CurrentWeek, progress.PreviousWeek, progress.Cycle,
			DateKey(progress.StartDate), DateKey(progress.WeekStartedOn),
			formatTimestamp(progress.LastUpdated)); err != nil {
			return fmt.Errorf("insert progress: %w", err)
		}
		var err error
		if stored, err = scanProgress(tx.QueryRowContext(ctx, progressQuery, userID, progress.PlanID)); err != nil {
			return fmt.Errorf("select progress: %w", err)
		}
		return nil
	}); err != nil {
		return ProgramProgress{}, storeError("init progress", err)
	}
	return stored, nil
}

func (r *sqliteProgressRepository) Advance(ctx context.Context, from ProgramProgress, next ProgramProgress) (
	bool, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	advanced := false
	if err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO program_week_completions (user_id, plan_id, cycle, week, completed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, plan_id, cycle, week) DO NOTHING`,
			userID, from.PlanID, from.Cycle, from.CurrentWeek, formatTimestamp(next.LastUpdated))
		if err != nil {
			return fmt.Errorf("insert week completion: %w", err)
		}
		var n int64
		if n, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}
		if result, err = tx.ExecContext(ctx, `
			UPDATE program_progress
			SET current_week = ?, previous_week = ?, cycle = ?, start_date = ?, week_started_on = ?, last_updated = ?
			WHERE user_id = ? AND plan_id = ? AND current_week = ? AND cycle = ?`,
			next.CurrentWeek, next.PreviousWeek, next.Cycle, DateKey(next.StartDate), DateKey(next.WeekStartedOn),
			formatTimestamp(next.LastUpdated), userID, from.PlanID, from.CurrentWeek, from.Cycle); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		if n, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return errStaleProgress
		}
		advanced = true
		return nil
	}); err != nil {
		if errors.Is(err, errStaleProgress) {
			return false, nil
		}
		return false, storeError("advance progress", err)
	}
	return advanced, nil
}
