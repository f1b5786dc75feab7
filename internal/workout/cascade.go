package workout

import (
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
)

// DefaultLookaheadDays bounds how far a rest day reschedule may push workouts.
const DefaultLookaheadDays = 7

// planRestDay computes the overrides that turn today into a rest day.
//
// The workout of today moves to tomorrow, tomorrow's workout to the day after and so on, until a workout lands on a
// day that was a rest day. When no rest day is found within lookahead days the chain stops and the last carried
// workout is reported as dropped. overrides must contain the existing overrides from today to today+lookahead.
func planRestDay(
	cat *catalog.Catalog,
	plan catalog.Plan,
	today time.Time,
	current catalog.Workout,
	overrides map[string]Override,
	lookahead int,
	now time.Time,
) (RescheduleResult, error) {
	if current.IsRest() {
		return RescheduleResult{}, ErrAlreadyRestDay
	}

	result := RescheduleResult{
		MovedWorkout: current,
		MovedToDate:  today.AddDate(0, 0, 1),
		Chain:        make([]Override, 0, lookahead+1),
		Absorbed:     false,
		Dropped:      nil,
	}
	result.Chain = append(result.Chain, Override{Date: today, WorkoutID: catalog.RestID, CreatedAt: now})

	carried := current
	for i := 1; i <= lookahead; i++ {
		date := today.AddDate(0, 0, i)
		displaced, _ := ResolveWorkout(cat, plan, date, overrides)
		result.Chain = append(result.Chain, Override{Date: date, WorkoutID: carried.ID, CreatedAt: now})
		if displaced.IsRest() {
			result.Absorbed = true
			return result, nil
		}
		carried = displaced
	}

	result.Dropped = &carried
	return result, nil
}
