package workout

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/liftplan/internal/analytics"
	"github.com/myrjola/liftplan/internal/catalog"
)

// BuildEmptySession creates a fresh in progress session from template.
//
// Each exercise gets catalog.DefaultSetCount sets whose weight is pre-filled from the learned defaults. The first
// exercise starts expanded.
func BuildEmptySession(
	id string,
	template catalog.Workout,
	defaults map[string]ExerciseDefault,
	date time.Time,
	programWeek *int,
	now time.Time,
) (Session, error) {
	if template.ID == "" || template.IsRest() {
		return Session{}, fmt.Errorf("%w: template id %q", ErrInvalidTemplate, template.ID)
	}
	sess := Session{
		ID:           id,
		TemplateID:   template.ID,
		Title:        template.Title,
		Tag:          template.Tag,
		Date:         Date(date),
		ProgramWeek:  programWeek,
		ProgramCycle: 0,
		Status:       StatusInProgress,
		StartedAt:    now,
		CompletedAt:  nil,
		Exercises:    make([]SessionExercise, len(template.Exercises)),
	}
	for i, e := range template.Exercises {
		n := catalog.DefaultSetCount(e.Sets)
		sets := make([]SessionSet, n)
		for j := range sets {
			sets[j] = SessionSet{
				SetIndex: j + 1,
				Weight:   defaultWeight(defaults, e.Name),
				Reps:     "",
				Saved:    false,
				SavedAt:  nil,
			}
		}
		sess.Exercises[i] = SessionExercise{
			Name:         e.Name,
			OriginalName: "",
			IsSwapped:    false,
			TargetSets:   e.Sets,
			TargetReps:   e.Reps,
			Note:         e.Note,
			Sets:         sets,
			Expanded:     i == 0,
		}
	}
	return sess, nil
}

func defaultWeight(defaults map[string]ExerciseDefault, name string) string {
	return defaults[catalog.ExerciseKey(name)].DefaultWeight
}

// Normalize prepares a loaded session for display.
//
// The first exercise is expanded, set indexes are made contiguous and empty weights of unsaved sets are filled from
// the current defaults. Saved sets are never touched.
func Normalize(sess Session, defaults map[string]ExerciseDefault) Session {
	sess.Exercises = slices.Clone(sess.Exercises)
	for i := range sess.Exercises {
		e := &sess.Exercises[i]
		if i == 0 {
			e.Expanded = true
		}
		e.Sets = slices.Clone(e.Sets)
		for j := range e.Sets {
			s := &e.Sets[j]
			s.SetIndex = j + 1
			if !s.Saved {
				s.SavedAt = nil
				if strings.TrimSpace(s.Weight) == "" {
					s.Weight = defaultWeight(defaults, e.Name)
				}
			}
		}
	}
	return sess
}

// SetField names an editable field of a set.
type SetField string

const (
	SetFieldWeight SetField = "weight"
	SetFieldReps   SetField = "reps"
)

// withSet returns a copy of sess where the set at exercise exIdx and setIndex has been replaced by fn.
func withSet(sess Session, exIdx, setIndex int, fn func(e SessionExercise, s SessionSet) (SessionSet, error)) (
	Session, error) {
	if exIdx < 0 || exIdx >= len(sess.Exercises) {
		return sess, fmt.Errorf("%w: exercise %d", ErrNotFound, exIdx)
	}
	e := sess.Exercises[exIdx]
	if setIndex < 1 || setIndex > len(e.Sets) {
		return sess, fmt.Errorf("%w: set %d of %s", ErrNotFound, setIndex, e.Name)
	}
	updated, err := fn(e, e.Sets[setIndex-1])
	if err != nil {
		return sess, err
	}
	e.Sets = slices.Clone(e.Sets)
	e.Sets[setIndex-1] = updated
	return withExercise(sess, exIdx, e), nil
}

func withExercise(sess Session, exIdx int, e SessionExercise) Session {
	sess.Exercises = slices.Clone(sess.Exercises)
	sess.Exercises[exIdx] = e
	return sess
}

// UpdateSetField changes the weight or reps text of an unsaved set.
func UpdateSetField(sess Session, exIdx, setIndex int, field SetField, value string) (Session, error) {
	return withSet(sess, exIdx, setIndex, func(_ SessionExercise, s SessionSet) (SessionSet, error) {
		if s.Saved {
			return s, fmt.Errorf("%w: edit set %d before changing it", ErrSetLocked, s.SetIndex)
		}
		switch field {
		case SetFieldWeight:
			s.Weight = value
		case SetFieldReps:
			s.Reps = value
		default:
			return s, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, field)
		}
		return s, nil
	})
}

// SaveSet validates and commits a set. A saved set stays as it is until EditSet reopens it.
func SaveSet(sess Session, exIdx, setIndex int, now time.Time) (Session, error) {
	return withSet(sess, exIdx, setIndex, func(e SessionExercise, s SessionSet) (SessionSet, error) {
		if s.Saved {
			return s, fmt.Errorf("%w: set %d is already saved", ErrSetLocked, s.SetIndex)
		}
		if err := ValidateSetBeforeSave(e, s); err != nil {
			return s, err
		}
		s.Weight = strings.TrimSpace(s.Weight)
		s.Reps = strings.TrimSpace(s.Reps)
		s.Saved = true
		s.SavedAt = &now
		return s, nil
	})
}

// EditSet reopens a saved set for correction.
func EditSet(sess Session, exIdx, setIndex int) (Session, error) {
	return withSet(sess, exIdx, setIndex, func(_ SessionExercise, s SessionSet) (SessionSet, error) {
		s.Saved = false
		s.SavedAt = nil
		return s, nil
	})
}

// CanRemoveSet reports whether the set may be removed. Saved sets and the last remaining set stay.
func CanRemoveSet(e SessionExercise, s SessionSet) bool {
	return !s.Saved && len(e.Sets) > 1
}

// RemoveSet deletes an unsaved set and renumbers the remaining ones.
func RemoveSet(sess Session, exIdx, setIndex int) (Session, error) {
	if _, err := withSet(sess, exIdx, setIndex, func(e SessionExercise, s SessionSet) (SessionSet, error) {
		if s.Saved {
			return s, fmt.Errorf("%w: cannot remove saved set %d", ErrSetLocked, s.SetIndex)
		}
		if !CanRemoveSet(e, s) {
			return s, fmt.Errorf("%w: %s needs at least one set", ErrInvalidInput, e.Name)
		}
		return s, nil
	}); err != nil {
		return sess, err
	}

	e := sess.Exercises[exIdx]
	e.Sets = slices.Delete(slices.Clone(e.Sets), setIndex-1, setIndex)
	for i := range e.Sets {
		e.Sets[i].SetIndex = i + 1
	}
	return withExercise(sess, exIdx, e), nil
}

// AddSet appends an empty set. Its weight is copied from the previous set, falling back to weight.
func AddSet(sess Session, exIdx int, weight string) (Session, error) {
	if exIdx < 0 || exIdx >= len(sess.Exercises) {
		return sess, fmt.Errorf("%w: exercise %d", ErrNotFound, exIdx)
	}
	e := sess.Exercises[exIdx]
	if n := len(e.Sets); n > 0 && e.Sets[n-1].Weight != "" {
		weight = e.Sets[n-1].Weight
	}
	e.Sets = append(slices.Clone(e.Sets), SessionSet{
		SetIndex: len(e.Sets) + 1,
		Weight:   weight,
		Reps:     "",
		Saved:    false,
		SavedAt:  nil,
	})
	return withExercise(sess, exIdx, e), nil
}

// SwapExercise replaces the exercise at exIdx with name for this session only.
//
// OriginalName keeps the template name across repeated swaps and swapping back to it clears the swap. When reset is
// true all sets are replaced by empty ones with weight pre-filled.
func SwapExercise(sess Session, exIdx int, name string, reset bool, weight string) (Session, error) {
	if exIdx < 0 || exIdx >= len(sess.Exercises) {
		return sess, fmt.Errorf("%w: exercise %d", ErrNotFound, exIdx)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return sess, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}
	e := sess.Exercises[exIdx]
	if !e.IsSwapped {
		e.OriginalName = e.Name
	}
	e.Name = name
	e.IsSwapped = true
	if name == e.OriginalName {
		e.IsSwapped = false
		e.OriginalName = ""
	}
	if reset {
		sets := make([]SessionSet, len(e.Sets))
		for i := range sets {
			sets[i] = SessionSet{SetIndex: i + 1, Weight: weight, Reps: "", Saved: false, SavedAt: nil}
		}
		e.Sets = sets
	}
	return withExercise(sess, exIdx, e), nil
}

// ValidateSetBeforeSave checks that a set can be committed.
//
// Reps are always required. Weight is required unless the exercise targets time or AMRAP. Present values must be
// finite numbers that are not negative. A comma is accepted as decimal separator.
func ValidateSetBeforeSave(e SessionExercise, s SessionSet) error {
	if strings.TrimSpace(s.Reps) == "" {
		return fmt.Errorf("%w: reps are required", ErrInvalidInput)
	}
	if reps, ok := analytics.ParseNumber(s.Reps); !ok || reps < 0 {
		return fmt.Errorf("%w: reps must be a number of at least 0", ErrInvalidInput)
	}
	if strings.TrimSpace(s.Weight) == "" {
		if catalog.RepsOpenEnded(e.TargetReps) {
			return nil
		}
		return fmt.Errorf("%w: weight is required", ErrInvalidInput)
	}
	if weight, ok := analytics.ParseNumber(s.Weight); !ok || weight < 0 {
		return fmt.Errorf("%w: weight must be a number of at least 0", ErrInvalidInput)
	}
	return nil
}
