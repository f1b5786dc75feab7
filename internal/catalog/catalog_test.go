package catalog_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftplan/internal/catalog"
)

func TestLoad(t *testing.T) {
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var ids []string
	for _, p := range c.Plans() {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]string{"fullbody3", "ppl6", "upper_lower4"}, ids); diff != "" {
		t.Errorf("plan ids mismatch (-want +got):\n%s", diff)
	}

	ppl, ok := c.Plan("ppl6")
	if !ok {
		t.Fatal("ppl6 not found")
	}
	if ppl.TotalWorkoutsPerWeek != 6 {
		t.Errorf("TotalWorkoutsPerWeek = %d, want 6", ppl.TotalWorkoutsPerWeek)
	}
	if diff := cmp.Diff([]string{"push", "pull", "legs_abs"}, ppl.RequiredWorkoutIDs()); diff != "" {
		t.Errorf("RequiredWorkoutIDs mismatch (-want +got):\n%s", diff)
	}

	// Workouts of other plans are reachable through the flat index.
	if w, found := c.Workout("upper"); !found || w.Title != "Upper Body" {
		t.Errorf("Workout(upper) = %v, %v", w.Title, found)
	}
	if _, found := ppl.Workout("upper"); found {
		t.Error("ppl6 must not contain upper")
	}
}

func TestParse_validation(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr error
	}{
		{
			name: "duplicate plan id",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("id: p\ntitle: P\n")},
				"b.yaml": {Data: []byte("id: p\ntitle: Q\n")},
			},
			wantErr: catalog.ErrDuplicateID,
		},
		{
			name: "duplicate workout id",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("id: p\ntitle: P\nworkouts:\n  - id: w\n  - id: w\n")},
			},
			wantErr: catalog.ErrDuplicateID,
		},
		{
			name: "rest is reserved",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("id: p\ntitle: P\nworkouts:\n  - id: rest\n")},
			},
			wantErr: catalog.ErrInvalidPlan,
		},
		{
			name: "unknown weekday",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("id: p\ntitle: P\nworkouts:\n  - id: w\n    days: [funday]\n")},
			},
			wantErr: catalog.ErrInvalidWeekday,
		},
		{
			name: "unknown difficulty",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte(`id: p
title: P
workouts:
  - id: w
    exercises:
      - name: Squat
        alternatives: [{name: Box Squat, difficulty: trivial}]
`)},
			},
			wantErr: catalog.ErrInvalidPlan,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse(tt.files)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkout_ScheduledOn(t *testing.T) {
	w := catalog.Workout{ID: "w", Days: []string{"Monday", "thu"}}
	for d := time.Sunday; d <= time.Saturday; d++ {
		want := d == time.Monday || d == time.Thursday
		if got := w.ScheduledOn(d); got != want {
			t.Errorf("ScheduledOn(%s) = %v, want %v", d, got, want)
		}
	}
}

func TestDefaultSetCount(t *testing.T) {
	tests := map[string]int{
		"3-4": 3,
		"5":   5,
		"abc": 3,
		"":    3,
		"0":   3,
		" 4 ": 4,
	}
	for in, want := range tests {
		if got := catalog.DefaultSetCount(in); got != want {
			t.Errorf("DefaultSetCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestExerciseKey(t *testing.T) {
	if got := catalog.ExerciseKey("  Bench   Press "); got != "bench_press" {
		t.Errorf("ExerciseKey() = %q", got)
	}
}

func TestResolveExerciseProgression(t *testing.T) {
	e := catalog.Exercise{
		Name: "Squat",
		Sets: "3-5",
		Reps: "5-8",
		WeeklyProgression: []catalog.Progression{
			{Weeks: []int{1, 2}, Sets: "3", Reps: "8"},
			{Weeks: []int{3, 4}, Sets: "4", Reps: "6"},
		},
	}
	tests := []struct {
		name     string
		exercise catalog.Exercise
		week     int
		sets     string
		reps     string
	}{
		{name: "matching entry", exercise: e, week: 3, sets: "4", reps: "6"},
		{name: "falls back to first entry", exercise: e, week: 7, sets: "3", reps: "8"},
		{name: "static without table", exercise: catalog.Exercise{Sets: "2", Reps: "AMRAP"}, week: 1, sets: "2",
			reps: "AMRAP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, reps := catalog.ResolveExerciseProgression(tt.exercise, tt.week)
			if sets != tt.sets || reps != tt.reps {
				t.Errorf("got %s x %s, want %s x %s", sets, reps, tt.sets, tt.reps)
			}
		})
	}

	w := catalog.Workout{ID: "legs", Exercises: []catalog.Exercise{e}}
	applied := catalog.ApplyWeeklyProgression(w, 4)
	if applied.Exercises[0].Sets != "4" {
		t.Errorf("applied sets = %s, want 4", applied.Exercises[0].Sets)
	}
	if w.Exercises[0].Sets != "3-5" {
		t.Error("ApplyWeeklyProgression must not modify its input")
	}
}

func TestExercise_NoteHTML(t *testing.T) {
	got, err := catalog.Exercise{Note: "Keep it **tight** <script>"}.NoteHTML()
	if err != nil {
		t.Fatalf("NoteHTML() error = %v", err)
	}
	if !strings.Contains(got, "<strong>tight</strong>") {
		t.Errorf("expected bold markup, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html must not pass through, got %q", got)
	}
}
