package analytics

import (
	"slices"
	"time"
)

const (
	// DailyCadence allows one day between counted days.
	DailyCadence = 1
	// WeeklyCadence allows up to a week between counted days, used for cardio.
	WeeklyCadence = 7
)

const hoursPerDay = 24

// CalculateStreak counts consecutive activity days walking back from today.
//
// The most recent day counts when it is at most maxGap days before today. Each following day counts when it is at
// most maxGap days before the previously counted one. The walk stops at the first larger gap. Dates after today are
// ignored.
func CalculateStreak(dates []time.Time, today time.Time, maxGap int) int {
	today = civil(today)
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = civil(d)
		if d.After(today) {
			continue
		}
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	days = slices.Compact(days)

	streak := 0
	previous := today
	for _, d := range days {
		if daysBetween(d, previous) > maxGap {
			break
		}
		streak++
		previous = d
	}
	return streak
}

// civil truncates t to its calendar date in its own location, expressed in UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / hoursPerDay)
}
