package analytics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
)

// PersonalRecord is the best saved set of an exercise by weight × reps.
type PersonalRecord struct {
	Exercise string
	Weight   float64
	Reps     float64
	Volume   float64
	Date     time.Time
}

// PersonalRecords returns one record per exercise ordered by exercise name.
//
// Exercises are matched by catalog.ExerciseKey so that differently cased names share a record. Ties keep the record
// found first.
func PersonalRecords(sessions []Session) []PersonalRecord {
	records := make(map[string]PersonalRecord)
	for _, sess := range sessions {
		for _, e := range sess.Exercises {
			key := catalog.ExerciseKey(e.Name)
			for _, s := range e.Sets {
				if !s.Saved {
					continue
				}
				weight, reps := setValues(s)
				volume := weight * reps
				if current, ok := records[key]; ok && volume <= current.Volume {
					continue
				}
				records[key] = PersonalRecord{
					Exercise: e.Name,
					Weight:   weight,
					Reps:     reps,
					Volume:   volume,
					Date:     sess.Date,
				}
			}
		}
	}
	result := slices.Collect(maps.Values(records))
	slices.SortFunc(result, func(a, b PersonalRecord) int {
		return strings.Compare(catalog.ExerciseKey(a.Exercise), catalog.ExerciseKey(b.Exercise))
	})
	return result
}
