package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/errors"
)

// sqliteSessionRepository implements SessionStore.
type sqliteSessionRepository struct {
	baseRepository
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const sessionColumns = `id, template_id, title, tag, date, program_week, program_cycle, status, started_at, completed_at`

func (r *sqliteSessionRepository) Get(ctx context.Context, id string) (Session, error) {
	sessions, err := r.query(ctx, r.db.ReadOnly, `WHERE user_id = ? AND id = ?`,
		contexthelpers.AuthenticatedUserID(ctx), id)
	if err != nil {
		return Session{}, storeError("get session", err)
	}
	if len(sessions) == 0 {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sessions[0], nil
}

func (r *sqliteSessionRepository) FindInProgress(ctx context.Context, templateID string, date time.Time) (
	Session, error) {
	sessions, err := r.query(ctx, r.db.ReadOnly, `WHERE user_id = ? AND template_id = ? AND date = ? AND status = ?
		ORDER BY started_at DESC LIMIT 1`,
		contexthelpers.AuthenticatedUserID(ctx), templateID, DateKey(date), StatusInProgress)
	if err != nil {
		return Session{}, storeError("find in progress session", err)
	}
	if len(sessions) == 0 {
		return Session{}, fmt.Errorf("in progress %s on %s: %w", templateID, DateKey(date), ErrNotFound)
	}
	return sessions[0], nil
}

func (r *sqliteSessionRepository) ListCompleted(ctx context.Context) ([]Session, error) {
	sessions, err := r.query(ctx, r.db.ReadOnly, `WHERE user_id = ? AND status = ? ORDER BY date DESC, started_at DESC`,
		contexthelpers.AuthenticatedUserID(ctx), StatusCompleted)
	if err != nil {
		return nil, storeError("list completed sessions", err)
	}
	return sessions, nil
}

func (r *sqliteSessionRepository) ListCompletedInWeek(ctx context.Context, cycle, week int) ([]Session, error) {
	sessions, err := r.query(ctx, r.db.ReadOnly, `WHERE user_id = ? AND status = ? AND program_cycle = ?
		AND program_week = ? ORDER BY date DESC, started_at DESC`,
		contexthelpers.AuthenticatedUserID(ctx), StatusCompleted, cycle, week)
	if err != nil {
		return nil, storeError("list completed sessions in week", err)
	}
	return sessions, nil
}

func (r *sqliteSessionRepository) Create(ctx context.Context, sess Session) error {
	if err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return r.save(ctx, tx, sess, false)
	}); err != nil {
		return storeError("create session", err)
	}
	return nil
}

func (r *sqliteSessionRepository) Update(
	ctx context.Context,
	id string,
	updateFn func(sess *Session) (bool, error),
) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	var fnErr error
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		sessions, err := r.query(ctx, tx, `WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fnErr = fmt.Errorf("session %s: %w", id, ErrNotFound)
			return fnErr
		}
		sess := sessions[0]
		var updated bool
		if updated, fnErr = updateFn(&sess); fnErr != nil || !updated {
			return fnErr
		}
		return r.save(ctx, tx, sess, true)
	})
	if fnErr != nil {
		// Not found and validation errors are not storage failures.
		return fnErr
	}
	if err != nil {
		return storeError("update session", err)
	}
	return nil
}

// query loads sessions matching the where clause together with their exercises and sets.
func (r *sqliteSessionRepository) query(ctx context.Context, q queryer, where string, args ...any) (
	_ []Session, err error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sessionColumns+` FROM workout_sessions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var (
		sessions []Session
		ids      []string
	)
	for rows.Next() {
		var sess Session
		if sess, err = scanSession(rows); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
		ids = append(ids, sess.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	exercises, err := r.loadExercises(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Exercises = exercises[sessions[i].ID]
		if sessions[i].Exercises == nil {
			sessions[i].Exercises = []SessionExercise{}
		}
	}
	return sessions, nil
}

func scanSession(rows *sql.Rows) (Session, error) {
	var (
		sess        Session
		date        string
		programWeek sql.NullInt64
		startedAt   string
		completedAt sql.NullString
		err         error
	)
	if err = rows.Scan(&sess.ID, &sess.TemplateID, &sess.Title, &sess.Tag, &date, &programWeek, &sess.ProgramCycle, &sess.Status,
		&startedAt, &completedAt); err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	if sess.Date, err = parseDate(date); err != nil {
		return Session{}, err
	}
	if programWeek.Valid {
		week := int(programWeek.Int64)
		sess.ProgramWeek = &week
	}
	if sess.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	if sess.CompletedAt, err = parseNullTimestamp(completedAt); err != nil {
		return Session{}, fmt.Errorf("parse completed_at: %w", err)
	}
	return sess, nil
}

// loadExercises fetches exercises and sets of the sessions with ids, keyed by session id.
func (r *sqliteSessionRepository) loadExercises(ctx context.Context, q queryer, ids []string) (
	_ map[string][]SessionExercise, err error) {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal session ids: %w", err)
	}

	exerciseRows, err := q.QueryContext(ctx, `
		SELECT session_id, name, original_name, is_swapped, target_sets, target_reps, note, expanded
		FROM session_exercises
		WHERE session_id IN (SELECT value FROM json_each(?))
		ORDER BY session_id, position`, string(idsJSON))
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := exerciseRows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close exercise rows: %w", closeErr))
		}
	}()

	result := make(map[string][]SessionExercise, len(ids))
	for exerciseRows.Next() {
		var (
			sessionID    string
			e            SessionExercise
			originalName sql.NullString
		)
		if err = exerciseRows.Scan(&sessionID, &e.Name, &originalName, &e.IsSwapped, &e.TargetSets, &e.TargetReps,
			&e.Note, &e.Expanded); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		e.OriginalName = originalName.String
		e.Sets = []SessionSet{}
		result[sessionID] = append(result[sessionID], e)
	}
	if err = exerciseRows.Err(); err != nil {
		return nil, fmt.Errorf("exercise rows error: %w", err)
	}

	setRows, err := q.QueryContext(ctx, `
		SELECT session_id, exercise_position, set_index, weight, reps, saved, saved_at
		FROM session_sets
		WHERE session_id IN (SELECT value FROM json_each(?))
		ORDER BY session_id, exercise_position, set_index`, string(idsJSON))
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer func() {
		if closeErr := setRows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close set rows: %w", closeErr))
		}
	}()

	for setRows.Next() {
		var (
			sessionID string
			position  int
			s         SessionSet
			savedAt   sql.NullString
		)
		if err = setRows.Scan(&sessionID, &position, &s.SetIndex, &s.Weight, &s.Reps, &s.Saved, &savedAt); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		if s.SavedAt, err = parseNullTimestamp(savedAt); err != nil {
			return nil, fmt.Errorf("parse saved_at: %w", err)
		}
		exercises := result[sessionID]
		if position < 0 || position >= len(exercises) {
			return nil, fmt.Errorf("set of session %s references missing exercise %d", sessionID, position)
		}
		exercises[position].Sets = append(exercises[position].Sets, s)
	}
	if err = setRows.Err(); err != nil {
		return nil, fmt.Errorf("set rows error: %w", err)
	}
	return result, nil
}

// save writes sess and replaces its exercises and sets. Without upsert an existing id is an error.
func (r *sqliteSessionRepository) save(ctx context.Context, tx *sql.Tx, sess Session, upsert bool) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	query := `INSERT INTO workout_sessions (` + sessionColumns + `, user_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT (id) DO UPDATE SET
			template_id = excluded.template_id,
			title = excluded.title,
			tag = excluded.tag,
			date = excluded.date,
			program_week = excluded.program_week,
			program_cycle = excluded.program_cycle,
			status = excluded.status,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
		WHERE user_id = excluded.user_id`
	}
	if _, err := tx.ExecContext(ctx, query,
		sess.ID, sess.TemplateID, sess.Title, sess.Tag, DateKey(sess.Date), sess.ProgramWeek, sess.ProgramCycle, sess.Status,
		formatTimestamp(sess.StartedAt), formatNullTimestamp(sess.CompletedAt), userID); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_sets WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("delete sets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_exercises WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}

	for position, e := range sess.Exercises {
		originalName := sql.NullString{String: e.OriginalName, Valid: e.OriginalName != ""}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_exercises (session_id, user_id, position, name, original_name, is_swapped,
			                               target_sets, target_reps, note, expanded)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, userID, position, e.Name, originalName, e.IsSwapped, e.TargetSets, e.TargetReps, e.Note,
			e.Expanded); err != nil {
			return fmt.Errorf("insert exercise %s: %w", e.Name, err)
		}
		for _, s := range e.Sets {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_sets (session_id, user_id, exercise_position, set_index, weight, reps, saved, saved_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				sess.ID, userID, position, s.SetIndex, s.Weight, s.Reps, s.Saved, formatNullTimestamp(s.SavedAt),
			); err != nil {
				return fmt.Errorf("insert set %d of %s: %w", s.SetIndex, e.Name, err)
			}
		}
	}
	return nil
}
