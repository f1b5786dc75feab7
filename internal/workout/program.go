package workout

import (
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
)

// DefaultMaxWeeks is the program length after which the week pointer wraps to 1.
const DefaultMaxWeeks = 8

// newProgress starts plan at week 1 on today.
func newProgress(planID string, today, now time.Time) ProgramProgress {
	return ProgramProgress{
		PlanID:        planID,
		CurrentWeek:   1,
		PreviousWeek:  nil,
		Cycle:         1,
		StartDate:     today,
		WeekStartedOn: today,
		LastUpdated:   now,
	}
}

// weekQuotaMet reports whether sessions complete a program week of plan.
//
// Only completed sessions tagged with week of cycle count, whatever their date. Their number must reach the plan's
// weekly total and together they must cover every distinct workout of the plan.
func weekQuotaMet(plan catalog.Plan, sessions []Session, cycle, week int) bool {
	count := 0
	covered := make(map[string]bool)
	for _, s := range sessions {
		if s.Status != StatusCompleted || s.ProgramWeek == nil || *s.ProgramWeek != week || s.ProgramCycle != cycle {
			continue
		}
		count++
		covered[s.TemplateID] = true
	}
	if count == 0 || count < plan.TotalWorkoutsPerWeek {
		return false
	}
	for _, id := range plan.RequiredWorkoutIDs() {
		if !covered[id] {
			return false
		}
	}
	return true
}

// nextProgress returns the progress after completing the current week. Passing maxWeeks wraps to week 1 and starts a
// new cycle.
func nextProgress(p ProgramProgress, maxWeeks int, today, now time.Time) ProgramProgress {
	completed := p.CurrentWeek
	next := p
	next.PreviousWeek = &completed
	next.WeekStartedOn = today
	next.LastUpdated = now
	if p.CurrentWeek >= maxWeeks {
		next.CurrentWeek = 1
		next.Cycle = p.Cycle + 1
		next.StartDate = today
	} else {
		next.CurrentWeek = p.CurrentWeek + 1
	}
	return next
}
