package workout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftplan/internal/analytics"
	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/myrjola/liftplan/internal/ptr"
	"github.com/myrjola/liftplan/internal/workout"
)

var testTemplate = catalog.Workout{ //nolint:gochecknoglobals // read-only fixture.
	ID:    "push",
	Title: "Push",
	Days:  []string{"monday"},
	Tag:   "Push",
	Exercises: []catalog.Exercise{
		{Name: "Bench Press", Sets: "3-4", Reps: "6-8", Note: "Pause on the chest."},
		{Name: "Plank", Sets: "2", Reps: "time"},
		{Name: "Dips", Sets: "abc", Reps: "AMRAP"},
	},
}

func buildSession(t *testing.T) workout.Session {
	t.Helper()
	defaults := map[string]workout.ExerciseDefault{
		"bench_press": {ExerciseKey: "bench_press", DefaultWeight: "80", Reason: workout.DefaultReasonLastSavedSet},
	}
	sess, err := workout.BuildEmptySession("0193b2c4-0000-7000-8000-000000000000", testTemplate, defaults, monday,
		ptr.Ref(1), monday.Add(7*time.Hour))
	if err != nil {
		t.Fatalf("BuildEmptySession: %v", err)
	}
	return sess
}

func TestBuildEmptySession(t *testing.T) {
	sess := buildSession(t)

	if sess.Status != workout.StatusInProgress || sess.CompletedAt != nil {
		t.Errorf("status = %s, completedAt = %v", sess.Status, sess.CompletedAt)
	}
	if sess.TemplateID != "push" || sess.Title != "Push" || sess.Tag != "Push" || *sess.ProgramWeek != 1 {
		t.Errorf("session header = %+v", sess)
	}

	gotCounts := make([]int, len(sess.Exercises))
	for i, e := range sess.Exercises {
		gotCounts[i] = len(e.Sets)
		for j, s := range e.Sets {
			if s.SetIndex != j+1 || s.Saved || s.Reps != "" {
				t.Errorf("%s set %d = %+v", e.Name, j, s)
			}
		}
	}
	if diff := cmp.Diff([]int{3, 2, 3}, gotCounts); diff != "" {
		t.Errorf("set counts mismatch (-want +got):\n%s", diff)
	}
	if sess.Exercises[0].Sets[0].Weight != "80" || sess.Exercises[1].Sets[0].Weight != "" {
		t.Errorf("weights not pre-filled from defaults: %q, %q",
			sess.Exercises[0].Sets[0].Weight, sess.Exercises[1].Sets[0].Weight)
	}
	if !sess.Exercises[0].Expanded || sess.Exercises[1].Expanded {
		t.Error("want only the first exercise expanded")
	}
}

func TestBuildEmptySession_invalidTemplate(t *testing.T) {
	for _, template := range []catalog.Workout{{}, catalog.RestDay} {
		_, err := workout.BuildEmptySession("id", template, nil, monday, nil, monday)
		if !errors.Is(err, workout.ErrInvalidTemplate) {
			t.Errorf("BuildEmptySession(%q) error = %v, want ErrInvalidTemplate", template.ID, err)
		}
	}
}

func TestSetMutations(t *testing.T) {
	now := monday.Add(8 * time.Hour)
	sess := buildSession(t)

	sess, err := workout.UpdateSetField(sess, 0, 1, workout.SetFieldReps, "8")
	if err != nil {
		t.Fatalf("UpdateSetField: %v", err)
	}
	sess, err = workout.UpdateSetField(sess, 0, 1, workout.SetFieldWeight, " 82,5 ")
	if err != nil {
		t.Fatalf("UpdateSetField: %v", err)
	}
	original := sess
	if sess, err = workout.SaveSet(sess, 0, 1, now); err != nil {
		t.Fatalf("SaveSet: %v", err)
	}

	want := workout.SessionSet{SetIndex: 1, Weight: "82,5", Reps: "8", Saved: true, SavedAt: &now}
	if diff := cmp.Diff(want, sess.Exercises[0].Sets[0]); diff != "" {
		t.Errorf("saved set mismatch (-want +got):\n%s", diff)
	}
	if original.Exercises[0].Sets[0].Saved {
		t.Error("SaveSet modified its input")
	}

	if _, err = workout.UpdateSetField(sess, 0, 1, workout.SetFieldReps, "9"); !errors.Is(err, workout.ErrSetLocked) {
		t.Errorf("UpdateSetField on saved set error = %v, want ErrSetLocked", err)
	}
	if _, err = workout.RemoveSet(sess, 0, 1); !errors.Is(err, workout.ErrSetLocked) {
		t.Errorf("RemoveSet on saved set error = %v, want ErrSetLocked", err)
	}
	later := now.Add(time.Minute)
	resaved, err := workout.SaveSet(sess, 0, 1, later)
	if !errors.Is(err, workout.ErrSetLocked) {
		t.Errorf("SaveSet on saved set error = %v, want ErrSetLocked", err)
	}
	if got := resaved.Exercises[0].Sets[0].SavedAt; got == nil || !got.Equal(now) {
		t.Errorf("SaveSet on saved set changed saved at to %v, want %v", got, now)
	}

	if sess, err = workout.EditSet(sess, 0, 1); err != nil {
		t.Fatalf("EditSet: %v", err)
	}
	if s := sess.Exercises[0].Sets[0]; s.Saved || s.SavedAt != nil || s.Reps != "8" {
		t.Errorf("edited set = %+v, want reopened with values kept", s)
	}

	if sess, err = workout.AddSet(sess, 0, "60"); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	added := sess.Exercises[0].Sets[3]
	if added.SetIndex != 4 || added.Weight != "80" {
		t.Errorf("added set = %+v, want index 4 with weight of the previous set", added)
	}

	if sess, err = workout.RemoveSet(sess, 0, 2); err != nil {
		t.Fatalf("RemoveSet: %v", err)
	}
	indexes := make([]int, 0, len(sess.Exercises[0].Sets))
	for _, s := range sess.Exercises[0].Sets {
		indexes = append(indexes, s.SetIndex)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, indexes); diff != "" {
		t.Errorf("set indexes after removal mismatch (-want +got):\n%s", diff)
	}

	if _, err = workout.SaveSet(sess, 9, 1, now); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("SaveSet on missing exercise error = %v, want ErrNotFound", err)
	}
	if _, err = workout.SaveSet(sess, 0, 9, now); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("SaveSet on missing set error = %v, want ErrNotFound", err)
	}
}

func TestRemoveSet_lastSet(t *testing.T) {
	sess, err := workout.RemoveSet(buildSession(t), 1, 1)
	if err != nil {
		t.Fatalf("RemoveSet: %v", err)
	}
	if _, err = workout.RemoveSet(sess, 1, 1); !errors.Is(err, workout.ErrInvalidInput) {
		t.Errorf("RemoveSet of the last set error = %v, want ErrInvalidInput", err)
	}
	if len(sess.Exercises[1].Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(sess.Exercises[1].Sets))
	}
}

func TestCanRemoveSet(t *testing.T) {
	two := workout.SessionExercise{Sets: []workout.SessionSet{{SetIndex: 1}, {SetIndex: 2, Saved: true}}}
	one := workout.SessionExercise{Sets: []workout.SessionSet{{SetIndex: 1}}}

	if !workout.CanRemoveSet(two, two.Sets[0]) {
		t.Error("unsaved set of two should be removable")
	}
	if workout.CanRemoveSet(two, two.Sets[1]) {
		t.Error("saved set should not be removable")
	}
	if workout.CanRemoveSet(one, one.Sets[0]) {
		t.Error("last set should not be removable")
	}
}

func TestSwapExercise(t *testing.T) {
	sess := buildSession(t)
	sess, err := workout.UpdateSetField(sess, 0, 1, workout.SetFieldReps, "8")
	if err != nil {
		t.Fatalf("UpdateSetField: %v", err)
	}

	swapped, err := workout.SwapExercise(sess, 0, "Dumbbell Bench Press", false, "30")
	if err != nil {
		t.Fatalf("SwapExercise: %v", err)
	}
	e := swapped.Exercises[0]
	if e.Name != "Dumbbell Bench Press" || e.OriginalName != "Bench Press" || !e.IsSwapped {
		t.Errorf("swapped exercise = %s, %s, %t", e.Name, e.OriginalName, e.IsSwapped)
	}
	if e.Sets[0].Reps != "8" {
		t.Error("swap without reset should keep sets")
	}
	if sess.Exercises[0].Name != "Bench Press" {
		t.Error("SwapExercise modified its input")
	}

	swapped, err = workout.SwapExercise(swapped, 0, "Push-up", true, "")
	if err != nil {
		t.Fatalf("SwapExercise: %v", err)
	}
	e = swapped.Exercises[0]
	if e.OriginalName != "Bench Press" {
		t.Errorf("OriginalName = %s, want the template name kept across swaps", e.OriginalName)
	}
	if len(e.Sets) != 3 || e.Sets[0].Reps != "" || e.Sets[0].Weight != "" {
		t.Errorf("reset sets = %+v", e.Sets)
	}

	swapped, err = workout.SwapExercise(swapped, 0, "Bench Press", false, "")
	if err != nil {
		t.Fatalf("SwapExercise: %v", err)
	}
	if e = swapped.Exercises[0]; e.IsSwapped || e.OriginalName != "" {
		t.Errorf("swap back = %t, %q, want cleared", e.IsSwapped, e.OriginalName)
	}

	if _, err = workout.SwapExercise(sess, 0, "  ", false, ""); !errors.Is(err, workout.ErrInvalidInput) {
		t.Errorf("SwapExercise with blank name error = %v, want ErrInvalidInput", err)
	}
}

func TestValidateSetBeforeSave(t *testing.T) {
	tests := []struct {
		name       string
		targetReps string
		weight     string
		reps       string
		wantErr    bool
	}{
		{name: "valid", targetReps: "8-10", weight: "60", reps: "8"},
		{name: "decimal weight", targetReps: "8-10", weight: "62.5", reps: "8"},
		{name: "decimal comma", targetReps: "8-10", weight: "62,5", reps: "8"},
		{name: "missing reps", targetReps: "8-10", weight: "60", reps: "", wantErr: true},
		{name: "missing reps on timed", targetReps: "time", weight: "", reps: " ", wantErr: true},
		{name: "missing weight", targetReps: "8-10", weight: "", reps: "8", wantErr: true},
		{name: "timed without weight", targetReps: "time", weight: "", reps: "60"},
		{name: "amrap without weight", targetReps: "AMRAP", weight: "", reps: "12"},
		{name: "amrap case insensitive", targetReps: "Amrap", weight: "", reps: "12"},
		{name: "timed with weight", targetReps: "time", weight: "10", reps: "60"},
		{name: "non numeric weight", targetReps: "time", weight: "heavy", reps: "60", wantErr: true},
		{name: "non numeric reps", targetReps: "8", weight: "60", reps: "eight", wantErr: true},
		{name: "infinite weight", targetReps: "8", weight: "Inf", reps: "8", wantErr: true},
		{name: "negative weight", targetReps: "8", weight: "-50", reps: "8", wantErr: true},
		{name: "negative reps", targetReps: "time", weight: "", reps: "-3", wantErr: true},
		{name: "zero weight", targetReps: "8", weight: "0", reps: "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := workout.SessionExercise{Name: "Exercise", TargetReps: tt.targetReps}
			err := workout.ValidateSetBeforeSave(e, workout.SessionSet{SetIndex: 1, Weight: tt.weight, Reps: tt.reps})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSetBeforeSave() error = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, workout.ErrInvalidInput) {
				t.Errorf("ValidateSetBeforeSave() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	savedAt := monday.Add(time.Hour)
	sess := workout.Session{
		ID: "id",
		Exercises: []workout.SessionExercise{
			{Name: "Bench Press", Sets: []workout.SessionSet{
				{SetIndex: 1, Weight: "", Reps: "5", Saved: true, SavedAt: &savedAt},
				{SetIndex: 3, Weight: "", Reps: "", Saved: false, SavedAt: &savedAt},
			}},
			{Name: "Row", Expanded: true, Sets: []workout.SessionSet{{SetIndex: 1, Weight: "50"}}},
		},
	}
	defaults := map[string]workout.ExerciseDefault{"bench_press": {DefaultWeight: "90"}, "row": {DefaultWeight: "70"}}

	got := workout.Normalize(sess, defaults)

	want := []workout.SessionExercise{
		{Name: "Bench Press", Expanded: true, Sets: []workout.SessionSet{
			{SetIndex: 1, Weight: "", Reps: "5", Saved: true, SavedAt: &savedAt},
			{SetIndex: 2, Weight: "90", Reps: "", Saved: false, SavedAt: nil},
		}},
		{Name: "Row", Expanded: true, Sets: []workout.SessionSet{{SetIndex: 1, Weight: "50"}}},
	}
	if diff := cmp.Diff(want, got.Exercises); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	if sess.Exercises[0].Sets[1].Weight != "" {
		t.Error("Normalize modified its input")
	}
}

func TestSessionRoundTripStats(t *testing.T) {
	now := monday.Add(9 * time.Hour)
	sess := buildSession(t)
	var (
		err         error
		totalSets   int
		totalVolume float64
	)
	for i, e := range sess.Exercises {
		for _, s := range e.Sets {
			weight := "20"
			if e.TargetReps == "time" {
				weight = ""
			}
			if sess, err = workout.UpdateSetField(sess, i, s.SetIndex, workout.SetFieldWeight, weight); err != nil {
				t.Fatalf("UpdateSetField: %v", err)
			}
			if sess, err = workout.UpdateSetField(sess, i, s.SetIndex, workout.SetFieldReps, "10"); err != nil {
				t.Fatalf("UpdateSetField: %v", err)
			}
			if sess, err = workout.SaveSet(sess, i, s.SetIndex, now); err != nil {
				t.Fatalf("SaveSet: %v", err)
			}
			totalSets++
			if weight != "" {
				totalVolume += 200
			}
		}
	}

	exercises := make([]analytics.Exercise, len(sess.Exercises))
	for i, e := range sess.Exercises {
		exercises[i].Name = e.Name
		for _, s := range e.Sets {
			exercises[i].Sets = append(exercises[i].Sets,
				analytics.Set{SetIndex: s.SetIndex, Weight: s.Weight, Reps: s.Reps, Saved: s.Saved})
		}
	}
	stats := analytics.ComputeSessionStats(analytics.Session{Exercises: exercises})

	if stats.ExercisesCompleted != len(sess.Exercises) {
		t.Errorf("ExercisesCompleted = %d, want %d", stats.ExercisesCompleted, len(sess.Exercises))
	}
	if stats.TotalSets != totalSets || stats.TotalVolume != totalVolume {
		t.Errorf("totals = %d sets, %v volume, want %d, %v", stats.TotalSets, stats.TotalVolume, totalSets, totalVolume)
	}
}
