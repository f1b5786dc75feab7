// Package flightrecorder keeps a rolling execution trace in memory and dumps it to disk when a request times out.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"
)

const (
	defaultWindow   = 5 * time.Minute
	defaultMaxBytes = 64 << 20
	defaultCooldown = 30 * time.Minute
)

// Options tune the recorder. Zero values fall back to the defaults.
type Options struct {
	// Window is how far back the in-memory trace reaches.
	Window   time.Duration
	MaxBytes uint64
	// Cooldown is the minimum time between two dumps.
	Cooldown time.Duration
}

// Recorder dumps the recent execution trace into dir. A nil *Recorder is valid and never captures.
type Recorder struct {
	logger   *slog.Logger
	fr       *trace.FlightRecorder
	dir      string
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lastCapture time.Time
}

// New creates the recorder and the traces directory. The recorder is idle until Start.
func New(logger *slog.Logger, dir string, opts Options) (*Recorder, error) {
	if dir == "" {
		return nil, errors.New("traces directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd // rwxr-x---
		return nil, fmt.Errorf("create traces directory: %w", err)
	}
	if opts.Window == 0 {
		opts.Window = defaultWindow
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = defaultCooldown
	}
	return &Recorder{
		logger:      logger,
		fr:          trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: opts.Window, MaxBytes: opts.MaxBytes}),
		dir:         dir,
		cooldown:    opts.Cooldown,
		now:         time.Now,
		mu:          sync.Mutex{},
		lastCapture: time.Time{},
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.fr.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started", slog.String("dir", r.dir))
	return nil
}

func (r *Recorder) Stop() {
	r.fr.Stop()
}

// Capture writes the trace to a file named after reason and returns its path. It returns false while the
// cooldown of the previous capture is running or when the write fails.
func (r *Recorder) Capture(ctx context.Context, reason string) (string, bool) {
	if r == nil {
		return "", false
	}
	now := r.now()
	r.mu.Lock()
	if !r.lastCapture.IsZero() && now.Sub(r.lastCapture) < r.cooldown {
		r.mu.Unlock()
		return "", false
	}
	r.lastCapture = now
	r.mu.Unlock()

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	n, err := r.writeFile(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "capture trace", slog.String("file", path), slog.Any("error", err))
		return "", false
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace", slog.String("reason", reason),
		slog.String("file", path), slog.Int64("bytes", n))
	return path, true
}

func (r *Recorder) writeFile(path string) (_ int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create trace file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	n, err := r.fr.WriteTo(f)
	if err != nil {
		return n, fmt.Errorf("write trace: %w", err)
	}
	return n, nil
}
