package analytics_test

import (
	"testing"
	"time"

	"github.com/myrjola/liftplan/internal/analytics"
	"pgregory.net/rapid"
)

func TestCalculateStreak(t *testing.T) {
	today := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	daysAgo := func(days ...int) []time.Time {
		dates := make([]time.Time, len(days))
		for i, d := range days {
			dates[i] = today.AddDate(0, 0, -d)
		}
		return dates
	}

	tests := []struct {
		name   string
		dates  []time.Time
		maxGap int
		want   int
	}{
		{name: "no sessions", dates: nil, maxGap: analytics.DailyCadence, want: 0},
		{name: "today and yesterday", dates: daysAgo(0, 1), maxGap: analytics.DailyCadence, want: 2},
		{name: "gap breaks the chain", dates: daysAgo(0, 1, 3), maxGap: analytics.DailyCadence, want: 2},
		{name: "streak may start yesterday", dates: daysAgo(1, 2), maxGap: analytics.DailyCadence, want: 2},
		{name: "stale streak", dates: daysAgo(2, 3, 4), maxGap: analytics.DailyCadence, want: 0},
		{name: "duplicate dates count once", dates: daysAgo(0, 0, 1, 1), maxGap: analytics.DailyCadence, want: 2},
		{name: "unsorted input", dates: daysAgo(2, 0, 1), maxGap: analytics.DailyCadence, want: 3},
		{name: "future dates ignored", dates: daysAgo(-1, 0), maxGap: analytics.DailyCadence, want: 1},
		{name: "weekly cadence", dates: daysAgo(3, 10, 17, 30), maxGap: analytics.WeeklyCadence, want: 3},
		{
			name:   "time of day is ignored",
			dates:  []time.Time{today.Add(23 * time.Hour), today.Add(-time.Hour)},
			maxGap: analytics.DailyCadence,
			want:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analytics.CalculateStreak(tt.dates, today, tt.maxGap); got != tt.want {
				t.Errorf("CalculateStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateStreak_consecutiveDays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rapid.IntRange(0, 3650).Draw(rt, "offset"))
		n := rapid.IntRange(1, 60).Draw(rt, "n")
		start := rapid.IntRange(0, 1).Draw(rt, "start")
		dates := make([]time.Time, n)
		for i := range n {
			dates[i] = today.AddDate(0, 0, -(start + i))
		}
		// Anything older than a one-day gap must not count.
		dates = append(dates, today.AddDate(0, 0, -(start+n+1)))

		if got := analytics.CalculateStreak(dates, today, analytics.DailyCadence); got != n {
			rt.Fatalf("CalculateStreak() = %d, want %d", got, n)
		}
	})
}

func TestCalculateStreak_neverExceedsDistinctDays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		offsets := rapid.SliceOf(rapid.IntRange(-3, 40)).Draw(rt, "offsets")
		maxGap := rapid.SampledFrom([]int{analytics.DailyCadence, analytics.WeeklyCadence}).Draw(rt, "maxGap")
		distinct := make(map[int]bool)
		dates := make([]time.Time, len(offsets))
		for i, o := range offsets {
			dates[i] = today.AddDate(0, 0, -o)
			if o >= 0 {
				distinct[o] = true
			}
		}
		if got := analytics.CalculateStreak(dates, today, maxGap); got > len(distinct) {
			rt.Fatalf("CalculateStreak() = %d exceeds %d distinct past days", got, len(distinct))
		}
	})
}
