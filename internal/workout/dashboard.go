package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/myrjola/liftplan/internal/analytics"
	"golang.org/x/sync/errgroup"
)

const (
	maxBodyweightKg  = 500
	maxCardioKindLen = 32
	daysPerYear      = 365
)

// SessionStatsView pairs a session with its statistics.
type SessionStatsView struct {
	Session Session
	Stats   analytics.SessionStats
}

// Dashboard summarises the training history of a user.
type Dashboard struct {
	WorkoutStreak     int
	CardioStreak      int
	CompletedSessions int
	ProgramWeek       ProgramProgress
	Weeks             []analytics.WeekStats
	// LatestBodyweight is nil when no bodyweight has been logged within a year.
	LatestBodyweight *BodyweightEntry
	PersonalRecords  []analytics.PersonalRecord
}

func toAnalytics(sess Session) analytics.Session {
	exercises := make([]analytics.Exercise, len(sess.Exercises))
	for i, e := range sess.Exercises {
		sets := make([]analytics.Set, len(e.Sets))
		for j, set := range e.Sets {
			sets[j] = analytics.Set{
				SetIndex: set.SetIndex,
				Weight:   set.Weight,
				Reps:     set.Reps,
				Saved:    set.Saved,
			}
		}
		exercises[i] = analytics.Exercise{Name: e.Name, Sets: sets}
	}
	return analytics.Session{
		ID:          sess.ID,
		Date:        sess.Date,
		ProgramWeek: sess.ProgramWeek,
		Exercises:   exercises,
	}
}

func computeStats(sess Session) analytics.SessionStats {
	return analytics.ComputeSessionStats(toAnalytics(sess))
}

// Dashboard loads the history of the user concurrently and derives streaks, weekly totals and records.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.Today(ctx)
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		sessions   []Session
		cardio     []CardioSession
		bodyweight []BodyweightEntry
		progress   ProgramProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gErr error
		sessions, gErr = s.stores.Sessions.ListCompleted(gctx)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		cardio, gErr = s.stores.Logs.ListCardio(gctx)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		bodyweight, gErr = s.stores.Logs.ListBodyweight(gctx, today.AddDate(0, 0, -daysPerYear))
		return gErr
	})
	g.Go(func() error {
		var gErr error
		progress, gErr = s.GetProgramWeek(gctx, plan.ID)
		return gErr
	})
	if err = g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	history := make([]analytics.Session, len(sessions))
	sessionDates := make([]time.Time, len(sessions))
	for i, sess := range sessions {
		history[i] = toAnalytics(sess)
		sessionDates[i] = sess.Date
	}
	cardioDates := make([]time.Time, len(cardio))
	for i, c := range cardio {
		cardioDates[i] = c.Date
	}

	d := Dashboard{
		WorkoutStreak:     analytics.CalculateStreak(sessionDates, today, analytics.DailyCadence),
		CardioStreak:      analytics.CalculateStreak(cardioDates, today, analytics.WeeklyCadence),
		CompletedSessions: len(sessions),
		ProgramWeek:       progress,
		Weeks:             analytics.CalculateWeekStats(analytics.GroupSessionsByWeek(history)),
		LatestBodyweight:  nil,
		PersonalRecords:   analytics.PersonalRecords(history),
	}
	if len(bodyweight) > 0 {
		d.LatestBodyweight = &bodyweight[0]
	}
	return d, nil
}

// LogBodyweight records the weight of date, replacing an earlier entry of the same date.
func (s *Service) LogBodyweight(ctx context.Context, date time.Time, weightKg float64) error {
	if weightKg <= 0 || weightKg >= maxBodyweightKg {
		return fmt.Errorf("%w: bodyweight must be between 0 and %d kg", ErrInvalidInput, maxBodyweightKg)
	}
	if err := s.stores.Logs.UpsertBodyweight(ctx, BodyweightEntry{Date: Date(date), WeightKg: weightKg}); err != nil {
		return fmt.Errorf("log bodyweight: %w", err)
	}
	return nil
}

// ListBodyweight returns the entries of the last rangeDays days, newest first and sampled for charting.
func (s *Service) ListBodyweight(ctx context.Context, rangeDays int) ([]BodyweightEntry, error) {
	if rangeDays <= 0 {
		return nil, fmt.Errorf("%w: range must be positive", ErrInvalidInput)
	}
	entries, err := s.stores.Logs.ListBodyweight(ctx, s.Today(ctx).AddDate(0, 0, -rangeDays))
	if err != nil {
		return nil, fmt.Errorf("list bodyweight: %w", err)
	}
	return analytics.SampleWeights(entries, rangeDays), nil
}

// LogCardio records a cardio session.
func (s *Service) LogCardio(ctx context.Context, c CardioSession) (CardioSession, error) {
	c.Kind = strings.TrimSpace(c.Kind)
	switch {
	case c.Kind == "" || len(c.Kind) > maxCardioKindLen:
		return CardioSession{}, fmt.Errorf("%w: kind must be 1-%d characters", ErrInvalidInput, maxCardioKindLen)
	case c.Minutes <= 0:
		return CardioSession{}, fmt.Errorf("%w: minutes must be positive", ErrInvalidInput)
	case c.DistanceKm != nil && *c.DistanceKm < 0:
		return CardioSession{}, fmt.Errorf("%w: distance must not be negative", ErrInvalidInput)
	}
	c.Date = Date(c.Date)
	created, err := s.stores.Logs.CreateCardio(ctx, c)
	if err != nil {
		return CardioSession{}, fmt.Errorf("log cardio: %w", err)
	}
	return created, nil
}

// ListCardio returns all cardio sessions, newest first.
func (s *Service) ListCardio(ctx context.Context) ([]CardioSession, error) {
	sessions, err := s.stores.Logs.ListCardio(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cardio: %w", err)
	}
	return sessions, nil
}
