package analytics

import (
	"maps"
	"slices"
)

// GroupSessionsByWeek buckets sessions by program week. Sessions without a week are left out.
func GroupSessionsByWeek(sessions []Session) map[int][]Session {
	weeks := make(map[int][]Session)
	for _, s := range sessions {
		if s.ProgramWeek == nil {
			continue
		}
		weeks[*s.ProgramWeek] = append(weeks[*s.ProgramWeek], s)
	}
	return weeks
}

// WeekStats sums the saved sets of one program week.
type WeekStats struct {
	Week          int
	Sessions      int
	TotalVolume   float64
	TotalSets     int
	TotalReps     float64
	AverageVolume float64
}

// CalculateWeekStats returns per-week totals ordered by week.
func CalculateWeekStats(weeks map[int][]Session) []WeekStats {
	result := make([]WeekStats, 0, len(weeks))
	for _, week := range slices.Sorted(maps.Keys(weeks)) {
		ws := WeekStats{Week: week, Sessions: len(weeks[week])}
		for _, s := range weeks[week] {
			stats := ComputeSessionStats(s)
			ws.TotalVolume += stats.TotalVolume
			ws.TotalSets += stats.TotalSets
			ws.TotalReps += stats.TotalReps
		}
		if ws.Sessions > 0 {
			ws.AverageVolume = ws.TotalVolume / float64(ws.Sessions)
		}
		result = append(result, ws)
	}
	return result
}
