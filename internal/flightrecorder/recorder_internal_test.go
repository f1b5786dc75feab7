package flightrecorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/myrjola/liftplan/internal/testhelpers"
)

func TestRecorder_Capture(t *testing.T) {
	ctx := t.Context()
	dir := filepath.Join(t.TempDir(), "traces")
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	r, err := New(logger, dir, Options{Window: 0, MaxBytes: 0, Cooldown: time.Minute})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	if err = r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop()

	path, ok := r.Capture(ctx, "timeout")
	if !ok {
		t.Fatal("first capture was skipped")
	}
	if want := filepath.Join(dir, "timeout-20250106-120000.trace"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	if _, err = os.Stat(path); err != nil {
		t.Errorf("stat trace: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, ok = r.Capture(ctx, "timeout"); ok {
		t.Error("capture during cooldown was not skipped")
	}

	now = now.Add(time.Minute)
	if _, ok = r.Capture(ctx, "timeout"); !ok {
		t.Error("capture after cooldown was skipped")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read traces dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d trace files, want 2", len(entries))
	}
}

func TestRecorder_nil(t *testing.T) {
	var r *Recorder
	if _, ok := r.Capture(t.Context(), "timeout"); ok {
		t.Error("nil recorder captured a trace")
	}
}

func TestNew_requiresDir(t *testing.T) {
	if _, err := New(testhelpers.NewLogger(testhelpers.NewWriter(t)), "", Options{}); err == nil {
		t.Error("expected error for empty directory")
	}
}
