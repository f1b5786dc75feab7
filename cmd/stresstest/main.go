package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/liftplan/internal/e2etest"
	"github.com/myrjola/liftplan/internal/logging"
	"github.com/myrjola/liftplan/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	numUsers                = 10
	maxConcurrentOperations = 20
	historyWeeks            = 12
	scenarioTimeout         = 30 * time.Second
	historyTimeout          = 5 * time.Minute
	successRateThreshold    = 95.0
	baseWeight              = 40.0
	baseReps                = 8
)

type lifter struct {
	name   string
	client *e2etest.Client
}

type session struct {
	ID        string `json:"id"`
	Exercises []struct {
		Sets []struct {
			Index int `json:"setIndex"`
		} `json:"sets"`
	} `json:"exercises"`
}

type scheduledDay struct {
	Date      string `json:"date"`
	WorkoutID string `json:"workoutId"`
}

// setupUsers registers numUsers lifters, each with their own session cookie.
func setupUsers(ctx context.Context, url string) ([]*lifter, error) {
	users := make([]*lifter, numUsers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for i := range users {
		g.Go(func() error {
			client, err := e2etest.NewClient(url)
			if err != nil {
				return fmt.Errorf("create client %d: %w", i, err)
			}
			name := "Stress " + strconv.Itoa(i)
			if _, err = client.Register(gctx, name); err != nil {
				return fmt.Errorf("register %s: %w", name, err)
			}
			users[i] = &lifter{name: name, client: client}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("setup users: %w", err)
	}
	return users, nil
}

// logWorkout starts the workout scheduled on date, saves every set and completes the session.
func logWorkout(ctx context.Context, client *e2etest.Client, date, workoutID string, variation int) error {
	var sess session
	if err := client.Do(ctx, http.MethodPost, "/api/sessions",
		map[string]string{"mode": "start", "templateId": workoutID, "date": date}, &sess); err != nil {
		return fmt.Errorf("start %s on %s: %w", workoutID, date, err)
	}
	weight := strconv.FormatFloat(baseWeight+float64(variation%5)*2.5, 'f', 1, 64) //nolint:mnd // plate steps
	reps := strconv.Itoa(baseReps + variation%3)                                   //nolint:mnd // rep spread
	for e, exercise := range sess.Exercises {
		for _, set := range exercise.Sets {
			path := fmt.Sprintf("/api/sessions/%s/exercises/%d/sets/%d", sess.ID, e, set.Index)
			for field, value := range map[string]string{"weight": weight, "reps": reps} {
				if err := client.Do(ctx, http.MethodPatch, path,
					map[string]string{"field": field, "value": value}, nil); err != nil {
					return fmt.Errorf("update %s: %w", path, err)
				}
			}
			if err := client.Do(ctx, http.MethodPost, path+"/save", nil, nil); err != nil {
				return fmt.Errorf("save %s: %w", path, err)
			}
		}
	}
	if err := client.Do(ctx, http.MethodPost, "/api/sessions/"+sess.ID+"/complete", nil, nil); err != nil {
		return fmt.Errorf("complete %s: %w", sess.ID, err)
	}
	return nil
}

// generateHistory logs every scheduled workout of the past historyWeeks weeks.
func generateHistory(ctx context.Context, user *lifter, logger *slog.Logger) error {
	start := time.Now().UTC().AddDate(0, 0, -7*historyWeeks) //nolint:mnd // days in a week
	for week := range historyWeeks {
		var days []scheduledDay
		date := start.AddDate(0, 0, 7*week).Format(time.DateOnly) //nolint:mnd // days in a week
		if err := user.client.Do(ctx, http.MethodGet, "/api/schedule/"+date+"/week", nil, &days); err != nil {
			return fmt.Errorf("get week of %s: %w", date, err)
		}
		for i, day := range days {
			if day.WorkoutID == "rest" {
				continue
			}
			if err := logWorkout(ctx, user.client, day.Date, day.WorkoutID, week+i); err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "Failed to log workout", slog.String("user", user.name),
					slog.String("date", day.Date), slog.Any("error", err))
			}
		}
	}
	return nil
}

// scenario is what a lifter does when opening the app: check today, look at the dashboard and progress.
func scenario(ctx context.Context, user *lifter) error {
	today := time.Now().UTC().Format(time.DateOnly)
	for _, path := range []string{"/api/schedule/" + today, "/api/dashboard", "/api/program",
		"/api/bodyweight?days=90"} {
		if err := user.client.Do(ctx, http.MethodGet, path, nil, nil); err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}
	}
	if err := user.client.Do(ctx, http.MethodPost, "/api/bodyweight",
		map[string]any{"weightKg": 80.0}, nil); err != nil { //nolint:mnd // kg
		return fmt.Errorf("log bodyweight: %w", err)
	}
	return nil
}

func runLoadTest(ctx context.Context, users []*lifter, logger *slog.Logger) error {
	var successCount, failureCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, u := range users {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(gctx, scenarioTimeout)
			defer cancel()
			if err := scenario(scenarioCtx, u); err != nil {
				failureCount.Add(1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed", slog.String("user", u.name),
					slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(len(users)) * 100 //nolint:mnd // percent
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))
	if successRate < successRateThreshold {
		return fmt.Errorf("success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
	start := time.Now()
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	probe, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = probe.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	users, err := setupUsers(ctx, url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to setup users", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "User setup completed", slog.Int("users", len(users)),
		slog.Duration("duration", time.Since(start)))

	historyStart := time.Now()
	historyCtx, cancel := context.WithTimeout(ctx, historyTimeout)
	g, gctx := errgroup.WithContext(historyCtx)
	g.SetLimit(maxConcurrentOperations)
	for _, u := range users {
		g.Go(func() error { return generateHistory(gctx, u, logger) })
	}
	err = g.Wait()
	cancel()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "history generation failed, continuing with load test",
			slog.Any("error", err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "History generation completed", slog.Int("weeks", historyWeeks),
		slog.Duration("duration", time.Since(historyStart)))

	if err = runLoadTest(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Stress test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
