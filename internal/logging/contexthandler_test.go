package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/liftplan/internal/logging"
)

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"), slog.Int("user_id", 0))
	ctx = logging.WithAttrs(ctx, slog.Int("user_id", 42))
	logger.InfoContext(ctx, "hello")

	line := buf.String()
	for _, want := range []string{"trace_id=abc", "user_id=42"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q to contain %q", line, want)
		}
	}
	if strings.Contains(line, "user_id=0") {
		t.Errorf("expected overridden user_id to be dropped, got %q", line)
	}
}
