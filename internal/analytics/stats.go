// Package analytics computes derived statistics over session history.
//
// All functions are pure. Only saved sets count towards any statistic.
package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Set is a performed set as typed by the lifter.
type Set struct {
	SetIndex int
	Weight   string
	Reps     string
	Saved    bool
}

type Exercise struct {
	Name string
	Sets []Set
}

// Session is the input of the statistics functions.
type Session struct {
	ID          string
	Date        time.Time
	ProgramWeek *int
	Exercises   []Exercise
}

// BestSet is the set with the highest weight × reps.
type BestSet struct {
	Exercise string
	SetIndex int
	Weight   float64
	Reps     float64
	Volume   float64
}

// SessionStats aggregates the saved sets of a session.
type SessionStats struct {
	TotalVolume float64
	TotalSets   int
	TotalReps   float64
	// BestSet is nil when no set has been saved.
	BestSet            *BestSet
	ExercisesCompleted int
	ExerciseCount      int
}

// ParseNumber parses the text of a weight or reps field. A comma is accepted as decimal separator.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// setValues returns the numeric weight and reps of s. Missing values count as zero.
func setValues(s Set) (float64, float64) {
	weight, _ := ParseNumber(s.Weight)
	reps, _ := ParseNumber(s.Reps)
	return weight, reps
}

// ComputeSessionStats sums volume, sets and reps over the saved sets of sess.
//
// Ties for the best set keep the first one found, i.e. the lowest exercise index and then the lowest set index. An
// exercise is completed when it has sets and every one of them is saved.
func ComputeSessionStats(sess Session) SessionStats {
	stats := SessionStats{ExerciseCount: len(sess.Exercises)}
	for _, e := range sess.Exercises {
		allSaved := len(e.Sets) > 0
		for _, s := range e.Sets {
			if !s.Saved {
				allSaved = false
				continue
			}
			weight, reps := setValues(s)
			volume := weight * reps
			stats.TotalSets++
			stats.TotalReps += reps
			stats.TotalVolume += volume
			if stats.BestSet == nil || volume > stats.BestSet.Volume {
				stats.BestSet = &BestSet{
					Exercise: e.Name,
					SetIndex: s.SetIndex,
					Weight:   weight,
					Reps:     reps,
					Volume:   volume,
				}
			}
		}
		if allSaved {
			stats.ExercisesCompleted++
		}
	}
	return stats
}
