package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/liftplan/internal/e2etest"
	"github.com/myrjola/liftplan/internal/logging"
	"github.com/myrjola/liftplan/internal/testhelpers"
)

// TestAuth registers a throwaway user, checks that the session is authenticated and deletes the user again.
func TestAuth(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	if _, err = client.Register(ctx, "Smoke test"); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	var week []struct {
		WorkoutID string `json:"workoutId"`
	}
	today := time.Now().UTC().Format(time.DateOnly)
	if err = client.Do(ctx, http.MethodGet, "/api/schedule/"+today+"/week", nil, &week); err != nil {
		return fmt.Errorf("get week: %w", err)
	}
	if len(week) != 7 { //nolint:mnd // days in a week
		return fmt.Errorf("week has %d days", len(week))
	}
	if err = client.Do(ctx, http.MethodDelete, "/api/users/me", nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestAuth(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
