package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/myrjola/liftplan/internal/contexthelpers"
	"github.com/myrjola/liftplan/internal/metrics"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Config holds the program policy of a Service.
type Config struct {
	// MaxWeeks is the program length after which the week wraps to 1.
	MaxWeeks int
	// LookaheadDays bounds the rest day cascade.
	LookaheadDays int
	// DefaultPlanID is the plan of users that have not selected one.
	DefaultPlanID string
	// DefaultsCacheTTL is how long learned exercise defaults are cached per user.
	DefaultsCacheTTL time.Duration
}

const defaultCacheTTL = 10 * time.Minute

// Option configures a Service.
type Option func(s *Service)

// WithClock replaces time.Now as the source of timestamps and of today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics counts completions, week advances and truncated cascades.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator replaces the UUIDv7 session id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// Service handles the business logic for workout management.
type Service struct {
	catalog  *catalog.Catalog
	stores   Stores
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
	newID    func() (string, error)
	metrics  *metrics.Manager
	defaults *cache.Cache
}

// NewService creates a new workout service. Zero values in cfg are replaced by defaults.
func NewService(cat *catalog.Catalog, stores Stores, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	if cfg.MaxWeeks <= 0 {
		cfg.MaxWeeks = DefaultMaxWeeks
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = DefaultLookaheadDays
	}
	if cfg.DefaultsCacheTTL <= 0 {
		cfg.DefaultsCacheTTL = defaultCacheTTL
	}
	s := &Service{
		catalog:  cat,
		stores:   stores,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		newID:    newUUIDv7,
		metrics:  nil,
		defaults: cache.New(cfg.DefaultsCacheTTL, 2*cfg.DefaultsCacheTTL), //nolint:mnd // cleanup twice per TTL.
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// Catalog returns the plan catalog the service resolves workouts from.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Today returns the current date in the timezone of the request.
func (s *Service) Today(ctx context.Context) time.Time {
	return Date(s.now().In(contexthelpers.Timezone(ctx)))
}

// GetPreferences returns the saved preferences or the default plan.
func (s *Service) GetPreferences(ctx context.Context) (Preferences, error) {
	prefs, err := s.stores.Preferences.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return Preferences{PlanID: s.cfg.DefaultPlanID}, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences selects the active plan.
func (s *Service) SavePreferences(ctx context.Context, prefs Preferences) error {
	if _, ok := s.catalog.Plan(prefs.PlanID); !ok {
		return fmt.Errorf("%w: unknown plan %q", ErrInvalidInput, prefs.PlanID)
	}
	if err := s.stores.Preferences.Set(ctx, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// ActivePlan returns the plan selected by the user.
func (s *Service) ActivePlan(ctx context.Context) (catalog.Plan, error) {
	prefs, err := s.GetPreferences(ctx)
	if err != nil {
		return catalog.Plan{}, err
	}
	plan, ok := s.catalog.Plan(prefs.PlanID)
	if !ok {
		return catalog.Plan{}, fmt.Errorf("plan %s: %w", prefs.PlanID, ErrNotFound)
	}
	return plan, nil
}

// ResolveDay returns the workout due on date in the active plan.
func (s *Service) ResolveDay(ctx context.Context, date time.Time) (ScheduledDay, error) {
	date = Date(date)
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return ScheduledDay{}, err
	}
	overrides, err := s.stores.Overrides.ListRange(ctx, date, date)
	if err != nil {
		return ScheduledDay{}, fmt.Errorf("list overrides: %w", err)
	}
	w, overridden := ResolveWorkout(s.catalog, plan, date, overrides)
	return ScheduledDay{Date: date, Workout: w, Overridden: overridden}, nil
}

// ResolveWeek returns the seven days from Monday to Sunday of the week containing date.
func (s *Service) ResolveWeek(ctx context.Context, date time.Time) ([]ScheduledDay, error) {
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return nil, err
	}
	monday := WeekStart(date)
	overrides, err := s.stores.Overrides.ListRange(ctx, monday, monday.AddDate(0, 0, daysInWeek-1))
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return ResolveWeek(s.catalog, plan, monday, overrides), nil
}

// RescheduleRestDay turns date into a rest day and pushes the displaced workouts forward.
//
// All overrides of the chain are written in one transaction. A truncated chain is logged and reported through
// RescheduleResult.Dropped.
func (s *Service) RescheduleRestDay(ctx context.Context, date time.Time) (RescheduleResult, error) {
	date = Date(date)
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return RescheduleResult{}, err
	}
	overrides, err := s.stores.Overrides.ListRange(ctx, date, date.AddDate(0, 0, s.cfg.LookaheadDays))
	if err != nil {
		return RescheduleResult{}, fmt.Errorf("list overrides: %w", err)
	}
	current, _ := ResolveWorkout(s.catalog, plan, date, overrides)

	result, err := planRestDay(s.catalog, plan, date, current, overrides, s.cfg.LookaheadDays, s.now())
	if err != nil {
		return RescheduleResult{}, fmt.Errorf("reschedule %s: %w", DateKey(date), err)
	}
	if err = s.stores.Overrides.SetMany(ctx, result.Chain); err != nil {
		return RescheduleResult{}, fmt.Errorf("save overrides: %w", err)
	}

	if !result.Absorbed {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "rest day cascade truncated",
			slog.String("date", DateKey(date)),
			slog.String("dropped_workout", result.Dropped.ID),
			slog.Int("lookahead_days", s.cfg.LookaheadDays))
		if s.metrics != nil {
			s.metrics.CounterCascadesTruncated.Inc()
		}
	}
	return result, nil
}

func (s *Service) cacheKey(ctx context.Context) string {
	return strconv.Itoa(contexthelpers.AuthenticatedUserID(ctx))
}

// exerciseDefaults returns the learned defaults of the user, cached for Config.DefaultsCacheTTL.
func (s *Service) exerciseDefaults(ctx context.Context) (map[string]ExerciseDefault, error) {
	key := s.cacheKey(ctx)
	if cached, ok := s.defaults.Get(key); ok {
		if defaults, isMap := cached.(map[string]ExerciseDefault); isMap {
			return defaults, nil
		}
	}
	defaults, err := s.stores.Defaults.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercise defaults: %w", err)
	}
	s.defaults.Set(key, defaults, cache.DefaultExpiration)
	return defaults, nil
}

// GetSessionForRoute finds or creates the session a screen operates on.
//
// RouteModeEdit loads sessionID as is. RouteModeResume loads sessionID when it exists and otherwise behaves like
// RouteModeStart. RouteModeStart resumes the in progress session of templateID on date or builds a new one, so that
// double starts never create duplicates.
func (s *Service) GetSessionForRoute(
	ctx context.Context,
	mode RouteMode,
	sessionID string,
	templateID string,
	date time.Time,
) (Session, error) {
	switch mode {
	case RouteModeEdit:
		if sessionID == "" {
			return Session{}, fmt.Errorf("%w: edit requires a session id", ErrInvalidInput)
		}
		return s.GetSession(ctx, sessionID)
	case RouteModeResume:
		if sessionID != "" {
			sess, err := s.GetSession(ctx, sessionID)
			if err == nil || !errors.Is(err, ErrNotFound) {
				return sess, err
			}
		}
		return s.StartOrResume(ctx, templateID, date)
	case RouteModeStart:
		return s.StartOrResume(ctx, templateID, date)
	default:
		return Session{}, fmt.Errorf("%w: unknown route mode %q", ErrInvalidInput, mode)
	}
}

// StartOrResume returns the in progress session of templateID on date, creating it when there is none.
//
// New sessions are tagged with the current program week and use that week's progression of the template.
func (s *Service) StartOrResume(ctx context.Context, templateID string, date time.Time) (Session, error) {
	date = Date(date)
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return Session{}, err
	}
	template, ok := lookupWorkout(s.catalog, plan, templateID)
	if !ok {
		return Session{}, fmt.Errorf("workout %s: %w", templateID, ErrNotFound)
	}
	if template.IsRest() {
		return Session{}, fmt.Errorf("%w: cannot start a rest day", ErrInvalidTemplate)
	}

	var (
		defaults map[string]ExerciseDefault
		progress ProgramProgress
		existing Session
		found    bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gErr error
		defaults, gErr = s.exerciseDefaults(gctx)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		progress, gErr = s.GetProgramWeek(gctx, plan.ID)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		existing, gErr = s.stores.Sessions.FindInProgress(gctx, templateID, date)
		if errors.Is(gErr, ErrNotFound) {
			return nil
		}
		found = gErr == nil
		return gErr
	})
	if err = g.Wait(); err != nil {
		return Session{}, fmt.Errorf("load session context: %w", err)
	}

	if found {
		return Normalize(existing, defaults), nil
	}

	id, err := s.newID()
	if err != nil {
		return Session{}, fmt.Errorf("new session id: %w", err)
	}
	week := progress.CurrentWeek
	template = catalog.ApplyWeeklyProgression(template, week)
	sess, err := BuildEmptySession(id, template, defaults, date, &week, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("build session: %w", err)
	}
	sess.ProgramCycle = progress.Cycle
	if err = s.stores.Sessions.Create(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "session started",
		slog.String("session_id", sess.ID),
		slog.String("template_id", sess.TemplateID),
		slog.String("date", DateKey(date)),
		slog.Int("program_week", week),
		slog.Int("program_cycle", progress.Cycle))
	return sess, nil
}

// GetSession loads and normalizes a session.
func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	sess, err := s.stores.Sessions.Get(ctx, id)
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	defaults, err := s.exerciseDefaults(ctx)
	if err != nil {
		return Session{}, err
	}
	return Normalize(sess, defaults), nil
}

// mutate applies fn to the stored session inside the store's update transaction.
func (s *Service) mutate(ctx context.Context, id string, fn func(sess Session) (Session, error)) (Session, error) {
	var result Session
	if err := s.stores.Sessions.Update(ctx, id, func(sess *Session) (bool, error) {
		updated, err := fn(*sess)
		if err != nil {
			return false, err
		}
		*sess = updated
		result = updated
		return true, nil
	}); err != nil {
		return Session{}, fmt.Errorf("update session: %w", err)
	}
	return result, nil
}

// UpdateSetField changes the weight or reps text of an unsaved set.
func (s *Service) UpdateSetField(
	ctx context.Context,
	id string,
	exIdx, setIndex int,
	field SetField,
	value string,
) (Session, error) {
	return s.mutate(ctx, id, func(sess Session) (Session, error) {
		return UpdateSetField(sess, exIdx, setIndex, field, value)
	})
}

// SaveSet validates and commits a set and learns its weight as the exercise default.
func (s *Service) SaveSet(ctx context.Context, id string, exIdx, setIndex int) (Session, error) {
	now := s.now()
	sess, err := s.mutate(ctx, id, func(sess Session) (Session, error) {
		return SaveSet(sess, exIdx, setIndex, now)
	})
	if err != nil {
		return Session{}, err
	}

	e := sess.Exercises[exIdx]
	weight := e.Sets[setIndex-1].Weight
	if weight == "" {
		// Timed and AMRAP sets without weight keep the previous default.
		return sess, nil
	}
	if err = s.stores.Defaults.Upsert(ctx, ExerciseDefault{
		ExerciseKey:   catalog.ExerciseKey(e.Name),
		DefaultWeight: weight,
		Reason:        DefaultReasonLastSavedSet,
		UpdatedAt:     now,
	}); err != nil {
		return Session{}, fmt.Errorf("learn exercise default: %w", err)
	}
	s.defaults.Delete(s.cacheKey(ctx))
	return sess, nil
}

// EditSet reopens a saved set for correction.
func (s *Service) EditSet(ctx context.Context, id string, exIdx, setIndex int) (Session, error) {
	return s.mutate(ctx, id, func(sess Session) (Session, error) {
		return EditSet(sess, exIdx, setIndex)
	})
}

// RemoveSet deletes an unsaved set.
func (s *Service) RemoveSet(ctx context.Context, id string, exIdx, setIndex int) (Session, error) {
	return s.mutate(ctx, id, func(sess Session) (Session, error) {
		return RemoveSet(sess, exIdx, setIndex)
	})
}

// AddSet appends a set to an exercise.
func (s *Service) AddSet(ctx context.Context, id string, exIdx int) (Session, error) {
	defaults, err := s.exerciseDefaults(ctx)
	if err != nil {
		return Session{}, err
	}
	return s.mutate(ctx, id, func(sess Session) (Session, error) {
		weight := ""
		if exIdx >= 0 && exIdx < len(sess.Exercises) {
			weight = defaultWeight(defaults, sess.Exercises[exIdx].Name)
		}
		return AddSet(sess, exIdx, weight)
	})
}

// SwapExercise substitutes an exercise for this session only.
func (s *Service) SwapExercise(ctx context.Context, id string, exIdx int, name string, reset bool) (Session, error) {
	defaults, err := s.exerciseDefaults(ctx)
	if err != nil {
		return Session{}, err
	}
	return s.mutate(ctx, id, func(sess Session) (Session, error) {
		return SwapExercise(sess, exIdx, name, reset, defaultWeight(defaults, name))
	})
}

// SessionStats computes the statistics of one session.
func (s *Service) SessionStats(ctx context.Context, id string) (SessionStatsView, error) {
	sess, err := s.stores.Sessions.Get(ctx, id)
	if err != nil {
		return SessionStatsView{}, fmt.Errorf("get session: %w", err)
	}
	return SessionStatsView{Session: sess, Stats: computeStats(sess)}, nil
}

// MarkSessionCompleted completes a session and checks whether its program week is done.
//
// Completing an already completed session overwrites its completion time and repeats the week check, which advances
// at most once per week.
func (s *Service) MarkSessionCompleted(ctx context.Context, id string) (Completion, error) {
	now := s.now()
	sess, err := s.mutate(ctx, id, func(sess Session) (Session, error) {
		sess.Status = StatusCompleted
		sess.CompletedAt = &now
		return sess, nil
	})
	if err != nil {
		return Completion{}, fmt.Errorf("complete session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CounterSessionsCompleted.Inc()
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "session completed",
		slog.String("session_id", sess.ID),
		slog.String("template_id", sess.TemplateID))

	completion := Completion{Session: sess, Advance: nil}
	if sess.ProgramWeek == nil {
		return completion, nil
	}
	plan, err := s.ActivePlan(ctx)
	if err != nil {
		return Completion{}, err
	}
	advance, err := s.CheckAndAdvanceWeek(ctx, plan.ID)
	if err != nil {
		return Completion{}, err
	}
	completion.Advance = &advance
	return completion, nil
}

// GetProgramWeek returns the progress of planID, starting it at week 1 on first access.
func (s *Service) GetProgramWeek(ctx context.Context, planID string) (ProgramProgress, error) {
	progress, err := s.stores.Progress.Get(ctx, planID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return ProgramProgress{}, fmt.Errorf("get program progress: %w", err)
	}
	if progress, err = s.stores.Progress.Init(ctx, newProgress(planID, s.Today(ctx), s.now())); err != nil {
		return ProgramProgress{}, fmt.Errorf("init program progress: %w", err)
	}
	return progress, nil
}

// IsWeekCompleted reports whether the quota of week is met in the current cycle of planID.
func (s *Service) IsWeekCompleted(ctx context.Context, planID string, week int) (bool, error) {
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return false, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	progress, err := s.GetProgramWeek(ctx, planID)
	if err != nil {
		return false, err
	}
	sessions, err := s.stores.Sessions.ListCompletedInWeek(ctx, progress.Cycle, week)
	if err != nil {
		return false, fmt.Errorf("list week sessions: %w", err)
	}
	return weekQuotaMet(plan, sessions, progress.Cycle, week), nil
}

// CheckAndAdvanceWeek advances the program of planID when its current week is completed.
//
// Each week of a cycle advances at most once no matter how often the check runs.
func (s *Service) CheckAndAdvanceWeek(ctx context.Context, planID string) (WeekAdvance, error) {
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return WeekAdvance{}, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	progress, err := s.GetProgramWeek(ctx, planID)
	if err != nil {
		return WeekAdvance{}, err
	}
	notAdvanced := WeekAdvance{
		ShouldAdvance: false,
		CompletedWeek: 0,
		NextWeek:      progress.CurrentWeek,
		CurrentWeek:   progress.CurrentWeek,
	}

	sessions, err := s.stores.Sessions.ListCompletedInWeek(ctx, progress.Cycle, progress.CurrentWeek)
	if err != nil {
		return WeekAdvance{}, fmt.Errorf("list week sessions: %w", err)
	}
	if !weekQuotaMet(plan, sessions, progress.Cycle, progress.CurrentWeek) {
		return notAdvanced, nil
	}

	next := nextProgress(progress, s.cfg.MaxWeeks, s.Today(ctx), s.now())
	advanced, err := s.stores.Progress.Advance(ctx, progress, next)
	if err != nil {
		return WeekAdvance{}, fmt.Errorf("advance program week: %w", err)
	}
	if !advanced {
		return notAdvanced, nil
	}

	if s.metrics != nil {
		s.metrics.CounterWeekAdvances.Inc()
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "program week advanced",
		slog.String("plan_id", planID),
		slog.Int("completed_week", progress.CurrentWeek),
		slog.Int("next_week", next.CurrentWeek),
		slog.Int("cycle", next.Cycle))
	return WeekAdvance{
		ShouldAdvance: true,
		CompletedWeek: progress.CurrentWeek,
		NextWeek:      next.CurrentWeek,
		CurrentWeek:   next.CurrentWeek,
	}, nil
}
