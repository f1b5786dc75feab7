package workout

import (
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
)

// Status is the lifecycle state of a session. A session starts in progress and is completed once.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// SessionSet is one set as typed by the lifter. Weight and Reps stay free-form text until the set is saved.
type SessionSet struct {
	// SetIndex is 1-based and contiguous within the exercise.
	SetIndex int
	Weight   string
	Reps     string
	Saved    bool
	SavedAt  *time.Time
}

// SessionExercise is an exercise instance within a session.
type SessionExercise struct {
	Name string
	// OriginalName is the template name when the exercise has been swapped for this session only.
	OriginalName string
	IsSwapped    bool
	TargetSets   string
	TargetReps   string
	Note         string
	Sets         []SessionSet
	Expanded     bool
}

// Session is a concrete, dated performance of a workout template.
type Session struct {
	ID          string
	TemplateID  string
	Title       string
	Tag         string
	Date        time.Time
	ProgramWeek *int
	// ProgramCycle is the program cycle ProgramWeek belongs to, 0 when the session is untagged.
	ProgramCycle int
	Status       Status
	StartedAt    time.Time
	CompletedAt  *time.Time
	Exercises    []SessionExercise
}

// Override forces the workout of a date. WorkoutID is catalog.RestID for rest days.
type Override struct {
	Date      time.Time
	WorkoutID string
	CreatedAt time.Time
}

// ProgramProgress is the periodisation pointer of one plan.
type ProgramProgress struct {
	PlanID       string
	CurrentWeek  int
	PreviousWeek *int
	// Cycle counts how many times the program has been started, wrapping from the last week back to week 1.
	Cycle int
	// StartDate is the first day of the current cycle.
	StartDate time.Time
	// WeekStartedOn is the day CurrentWeek began.
	WeekStartedOn time.Time
	LastUpdated   time.Time
}

// WeekAdvance reports the outcome of a program week completion check.
type WeekAdvance struct {
	ShouldAdvance bool
	CompletedWeek int
	NextWeek      int
	CurrentWeek   int
}

// ExerciseDefault is the learned starting weight of an exercise.
type ExerciseDefault struct {
	ExerciseKey   string
	DefaultWeight string
	Reason        string
	UpdatedAt     time.Time
}

// DefaultReasonLastSavedSet marks defaults learned from the most recently saved set.
const DefaultReasonLastSavedSet = "last_saved_set"

// RescheduleResult describes the chain of overrides written by a rest day reschedule.
type RescheduleResult struct {
	MovedWorkout catalog.Workout
	// MovedToDate is where the workout displaced from today landed.
	MovedToDate time.Time
	// Chain lists every written override in date order, starting with today's rest day.
	Chain []Override
	// Absorbed is false when the look-ahead window ran out before reaching a rest day.
	Absorbed bool
	// Dropped is the workout pushed out of the look-ahead window when Absorbed is false.
	Dropped *catalog.Workout
}

// ScheduledDay is a resolved calendar day.
type ScheduledDay struct {
	Date       time.Time
	Workout    catalog.Workout
	Overridden bool
}

// Completion is the result of marking a session completed.
type Completion struct {
	Session Session
	// Advance is nil when the session is not part of a program week.
	Advance *WeekAdvance
}

// Preferences are per-user settings.
type Preferences struct {
	PlanID string
}

type BodyweightEntry struct {
	Date     time.Time
	WeightKg float64
}

type CardioSession struct {
	ID         int
	Date       time.Time
	Kind       string
	Minutes    int
	DistanceKm *float64
}

// RouteMode selects how GetSessionForRoute finds a session.
type RouteMode string

const (
	RouteModeEdit   RouteMode = "edit"
	RouteModeResume RouteMode = "resume"
	RouteModeStart  RouteMode = "start"
)
