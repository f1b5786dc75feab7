package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftplan/internal/e2etest"
)

func Test_application_sessions(t *testing.T) {
	ctx := t.Context()
	server, client := startServer(t)

	var sess sessionResponse
	t.Run("Start", func(t *testing.T) {
		err := client.Do(ctx, http.MethodPost, "/api/sessions",
			sessionRouteRequest{Mode: "start", SessionID: "", TemplateID: "push", Date: "2025-01-06"}, &sess)
		if err != nil {
			t.Fatalf("Failed to start session: %v", err)
		}
		if len(sess.ID) != 36 {
			t.Errorf("session id %q is not a UUID", sess.ID)
		}
		if sess.Status != "in_progress" || sess.Date != "2025-01-06" {
			t.Errorf("session status %s on %s", sess.Status, sess.Date)
		}
		bench := sess.Exercises[0]
		if bench.Name != "Bench Press" || bench.TargetReps != "8-10" || len(bench.Sets) != 3 {
			t.Errorf("bench press = %+v, want week 1 progression of 3x8-10", bench)
		}
	})

	t.Run("Start again resumes", func(t *testing.T) {
		var again sessionResponse
		err := client.Do(ctx, http.MethodPost, "/api/sessions",
			sessionRouteRequest{Mode: "start", SessionID: "", TemplateID: "push", Date: "2025-01-06"}, &again)
		if err != nil {
			t.Fatalf("Failed to start session: %v", err)
		}
		if again.ID != sess.ID {
			t.Errorf("second start created session %s, want %s", again.ID, sess.ID)
		}
	})

	setPath := "/api/sessions/" + sess.ID + "/exercises/0/sets/1"

	t.Run("Saving an empty set is rejected", func(t *testing.T) {
		err := client.Do(ctx, http.MethodPost, setPath+"/save", nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnprocessableEntity, err)
		}
	})

	t.Run("Update and save set", func(t *testing.T) {
		for _, req := range []setFieldRequest{{Field: "weight", Value: "60"}, {Field: "reps", Value: "8"}} {
			if err := client.Do(ctx, http.MethodPatch, setPath, req, &sess); err != nil {
				t.Fatalf("Failed to update %s: %v", req.Field, err)
			}
		}
		if err := client.Do(ctx, http.MethodPost, setPath+"/save", nil, &sess); err != nil {
			t.Fatalf("Failed to save set: %v", err)
		}
		set := sess.Exercises[0].Sets[0]
		if !set.Saved || set.Removable {
			t.Errorf("saved set = %+v", set)
		}
	})

	t.Run("Saved set cannot be removed", func(t *testing.T) {
		err := client.Do(ctx, http.MethodDelete, setPath, nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnprocessableEntity, err)
		}
	})

	t.Run("Saved set cannot be saved again", func(t *testing.T) {
		err := client.Do(ctx, http.MethodPost, setPath+"/save", nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusUnprocessableEntity, err)
		}
	})

	t.Run("Add and remove set", func(t *testing.T) {
		if err := client.Do(ctx, http.MethodPost, "/api/sessions/"+sess.ID+"/exercises/0/sets", nil,
			&sess); err != nil {
			t.Fatalf("Failed to add set: %v", err)
		}
		sets := sess.Exercises[0].Sets
		if len(sets) != 4 || sets[3].Weight != "60" {
			t.Fatalf("sets after add = %+v, want a fourth set with the learned weight", sets)
		}
		if err := client.Do(ctx, http.MethodDelete, "/api/sessions/"+sess.ID+"/exercises/0/sets/4", nil,
			&sess); err != nil {
			t.Fatalf("Failed to remove set: %v", err)
		}
		if got := len(sess.Exercises[0].Sets); got != 3 {
			t.Errorf("sets after remove = %d, want 3", got)
		}
	})

	t.Run("Swap exercise", func(t *testing.T) {
		if err := client.Do(ctx, http.MethodPost, "/api/sessions/"+sess.ID+"/exercises/1/swap",
			swapRequest{Name: "Seated Dumbbell Press", Reset: true}, &sess); err != nil {
			t.Fatalf("Failed to swap: %v", err)
		}
		got := sess.Exercises[1]
		if got.Name != "Seated Dumbbell Press" || got.OriginalName != "Overhead Press" || !got.IsSwapped {
			t.Errorf("swapped exercise = %+v", got)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		var stats sessionStatsResponse
		if err := client.Do(ctx, http.MethodGet, "/api/sessions/"+sess.ID+"/stats", nil, &stats); err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}
		want := bestSetResponse{Exercise: "Bench Press", SetIndex: 1, Weight: 60, Reps: 8, Volume: 480}
		if stats.Stats.BestSet == nil {
			t.Fatalf("best set is nil")
		}
		if diff := cmp.Diff(want, *stats.Stats.BestSet); diff != "" {
			t.Errorf("best set mismatch (-want +got):\n%s", diff)
		}
		if stats.Stats.TotalVolume != 480 || stats.Stats.TotalSets != 1 {
			t.Errorf("totals = %v volume, %d sets", stats.Stats.TotalVolume, stats.Stats.TotalSets)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		var completion completionResponse
		if err := client.Do(ctx, http.MethodPost, "/api/sessions/"+sess.ID+"/complete", nil,
			&completion); err != nil {
			t.Fatalf("Failed to complete: %v", err)
		}
		if completion.Session.Status != "completed" || completion.Session.CompletedAt == nil {
			t.Errorf("completed session = %+v", completion.Session)
		}
		if completion.Advance == nil || completion.Advance.ShouldAdvance {
			t.Errorf("advance = %+v, want a week check without advance", completion.Advance)
		}
		var status string
		if err := server.DB().QueryRowContext(ctx, "SELECT status FROM workout_sessions WHERE id = ?",
			sess.ID).Scan(&status); err != nil {
			t.Fatalf("Failed to query session row: %v", err)
		}
		if status != "completed" {
			t.Errorf("stored status = %s, want completed", status)
		}
	})

	t.Run("Other users cannot see the session", func(t *testing.T) {
		other, err := server.NewClient()
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}
		if _, err = other.Register(ctx, "Other"); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		err = other.Do(ctx, http.MethodGet, "/api/sessions/"+sess.ID, nil, nil)
		if got := e2etest.StatusCode(err); got != http.StatusNotFound {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusNotFound, err)
		}
	})

	t.Run("Edit mode requires an existing session", func(t *testing.T) {
		err := client.Do(ctx, http.MethodPost, "/api/sessions",
			sessionRouteRequest{Mode: "edit", SessionID: "01940000-0000-7000-8000-000000000000", TemplateID: "",
				Date: ""}, nil)
		if got := e2etest.StatusCode(err); got != http.StatusNotFound {
			t.Errorf("status = %d, want %d (err %v)", got, http.StatusNotFound, err)
		}
	})
}
