package catalog

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

const fallbackSetCount = 3

// DefaultSetCount parses a sets range such as "3-4" to the number of sets a new session starts with.
//
// The leading number wins. Anything unparsable yields 3.
func DefaultSetCount(sets string) int {
	first, _, _ := strings.Cut(sets, "-")
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || n <= 0 {
		return fallbackSetCount
	}
	return n
}

// RepsOpenEnded reports whether reps is a timed or AMRAP target, where weight is optional.
func RepsOpenEnded(reps string) bool {
	reps = strings.TrimSpace(reps)
	return strings.EqualFold(reps, "time") || strings.EqualFold(reps, "amrap")
}

// ExerciseKey normalises an exercise name for keying learned defaults. "  Bench  Press" becomes "bench_press".
func ExerciseKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// ResolveExerciseProgression returns the sets and reps of e during program week.
//
// The progression entry listing week wins, then the first entry, then the static sets and reps.
func ResolveExerciseProgression(e Exercise, week int) (string, string) {
	if len(e.WeeklyProgression) == 0 {
		return e.Sets, e.Reps
	}
	for _, p := range e.WeeklyProgression {
		if slices.Contains(p.Weeks, week) {
			return p.Sets, p.Reps
		}
	}
	first := e.WeeklyProgression[0]
	return first.Sets, first.Reps
}

// ApplyWeeklyProgression returns a copy of w with every exercise resolved for week.
func ApplyWeeklyProgression(w Workout, week int) Workout {
	resolved := w
	resolved.Exercises = make([]Exercise, len(w.Exercises))
	for i, e := range w.Exercises {
		e.Sets, e.Reps = ResolveExerciseProgression(e, week)
		resolved.Exercises[i] = e
	}
	return resolved
}

// Raw HTML in notes is escaped because goldmark.WithUnsafe is not set.
//
//nolint:gochecknoglobals // goldmark instances are safe for concurrent use.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// NoteHTML renders the markdown note of e.
func (e Exercise) NoteHTML() (string, error) {
	if e.Note == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(e.Note), &buf); err != nil {
		return "", fmt.Errorf("convert note markdown: %w", err)
	}
	return buf.String(), nil
}
