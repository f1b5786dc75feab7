package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/liftplan/internal/errors"
	"github.com/myrjola/liftplan/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// SessionStore persists sessions of the authenticated user.
type SessionStore interface {
	// Get returns ErrNotFound when the session does not exist.
	Get(ctx context.Context, id string) (Session, error)
	// FindInProgress returns the most recently started in progress session of templateID on date, or ErrNotFound.
	FindInProgress(ctx context.Context, templateID string, date time.Time) (Session, error)
	// ListCompleted returns completed sessions ordered by date descending.
	ListCompleted(ctx context.Context) ([]Session, error)
	// ListCompletedInWeek returns completed sessions tagged with program week of cycle.
	ListCompletedInWeek(ctx context.Context, cycle, week int) ([]Session, error)
	Create(ctx context.Context, sess Session) error
	// Update loads the session, applies updateFn and saves the result when updateFn returns true.
	Update(ctx context.Context, id string, updateFn func(sess *Session) (bool, error)) error
}

// OverrideStore persists schedule overrides of the authenticated user.
type OverrideStore interface {
	// ListRange returns the overrides from from to to inclusive keyed by DateKey.
	ListRange(ctx context.Context, from, to time.Time) (map[string]Override, error)
	// SetMany upserts overrides atomically.
	SetMany(ctx context.Context, overrides []Override) error
}

// ProgressStore persists program progress of the authenticated user.
type ProgressStore interface {
	// Get returns ErrNotFound when the plan has not been started.
	Get(ctx context.Context, planID string) (ProgramProgress, error)
	// Init stores progress unless the plan already has progress and returns the stored value.
	Init(ctx context.Context, progress ProgramProgress) (ProgramProgress, error)
	// Advance moves from to next and records that week from.CurrentWeek of cycle from.Cycle is completed. It returns
	// false without changes when that completion was already recorded.
	Advance(ctx context.Context, from ProgramProgress, next ProgramProgress) (bool, error)
}

// DefaultsStore persists learned exercise defaults of the authenticated user.
type DefaultsStore interface {
	// List returns defaults keyed by exercise key.
	List(ctx context.Context) (map[string]ExerciseDefault, error)
	Upsert(ctx context.Context, d ExerciseDefault) error
}

// PreferencesStore persists user preferences.
type PreferencesStore interface {
	// Get returns ErrNotFound when the user has not saved preferences.
	Get(ctx context.Context) (Preferences, error)
	Set(ctx context.Context, prefs Preferences) error
}

// LogStore persists bodyweight and cardio logs.
type LogStore interface {
	UpsertBodyweight(ctx context.Context, entry BodyweightEntry) error
	// ListBodyweight returns entries on or after since ordered by date descending.
	ListBodyweight(ctx context.Context, since time.Time) ([]BodyweightEntry, error)
	CreateCardio(ctx context.Context, c CardioSession) (CardioSession, error)
	// ListCardio returns cardio sessions ordered by date descending.
	ListCardio(ctx context.Context) ([]CardioSession, error)
}

// Stores is the set of persistence capabilities the Service depends on.
type Stores struct {
	Sessions    SessionStore
	Overrides   OverrideStore
	Progress    ProgressStore
	Defaults    DefaultsStore
	Preferences PreferencesStore
	Logs        LogStore
}

// NewSQLiteStores returns Stores backed by db.
func NewSQLiteStores(db *sqlite.Database, logger *slog.Logger) Stores {
	base := newBaseRepository(db, logger)
	return Stores{
		Sessions:    &sqliteSessionRepository{base},
		Overrides:   &sqliteOverrideRepository{base},
		Progress:    &sqliteProgressRepository{base},
		Defaults:    &sqliteDefaultsRepository{base},
		Preferences: &sqlitePreferencesRepository{base},
		Logs:        &sqliteLogRepository{base},
	}
}

type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// storeError marks err as a storage failure while keeping ErrNotFound and friends matchable.
func storeError(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, errors.Join(ErrStore, err))
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func formatNullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{String: "", Valid: false}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return t, nil
}

func parseNullTimestamp(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil //nolint:nilnil // NULL maps to a nil time.
	}
	t, err := parseTimestamp(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return t, nil
}
