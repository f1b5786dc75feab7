package workout

import (
	"fmt"
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
)

const daysInWeek = 7

// Date returns the civil date of t in its own location as midnight UTC.
//
// Dates are compared and stepped in UTC so that daylight saving transitions never skip or repeat a day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats the civil date of t, e.g. "2025-01-06".
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDateKey parses a date formatted by DateKey.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %w", ErrInvalidInput, key, err)
	}
	return t, nil
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	date = Date(date)
	offset := (int(date.Weekday()) + daysInWeek - int(time.Monday)) % daysInWeek
	return date.AddDate(0, 0, -offset)
}

// templateWorkout returns the first workout of plan assigned to the weekday of date, or the rest day.
func templateWorkout(plan catalog.Plan, date time.Time) catalog.Workout {
	weekday := date.Weekday()
	for _, w := range plan.Workouts {
		if w.ScheduledOn(weekday) {
			return w
		}
	}
	return catalog.RestDay
}

// lookupWorkout searches the active plan before the rest of the catalog, because an override may reference a
// workout of a previously selected plan.
func lookupWorkout(cat *catalog.Catalog, plan catalog.Plan, id string) (catalog.Workout, bool) {
	if id == catalog.RestID {
		return catalog.RestDay, true
	}
	if w, ok := plan.Workout(id); ok {
		return w, true
	}
	return cat.Workout(id)
}

// ResolveWorkout returns the workout due on date. An override for date always wins over the template.
//
// An override pointing at an unknown workout falls back to the template. ResolveWorkout never fails, returning
// catalog.RestDay when nothing is scheduled.
func ResolveWorkout(
	cat *catalog.Catalog,
	plan catalog.Plan,
	date time.Time,
	overrides map[string]Override,
) (catalog.Workout, bool) {
	if o, ok := overrides[DateKey(date)]; ok {
		if w, found := lookupWorkout(cat, plan, o.WorkoutID); found {
			return w, true
		}
	}
	return templateWorkout(plan, date), false
}

// ResolveWeek resolves the seven days from Monday to Sunday of the week containing date.
func ResolveWeek(
	cat *catalog.Catalog,
	plan catalog.Plan,
	date time.Time,
	overrides map[string]Override,
) []ScheduledDay {
	monday := WeekStart(date)
	days := make([]ScheduledDay, daysInWeek)
	for i := range daysInWeek {
		day := monday.AddDate(0, 0, i)
		w, overridden := ResolveWorkout(cat, plan, day, overrides)
		days[i] = ScheduledDay{Date: day, Workout: w, Overridden: overridden}
	}
	return days
}
