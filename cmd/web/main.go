package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/liftplan/internal/auth"
	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/myrjola/liftplan/internal/envstruct"
	"github.com/myrjola/liftplan/internal/errors"
	"github.com/myrjola/liftplan/internal/flightrecorder"
	"github.com/myrjola/liftplan/internal/logging"
	"github.com/myrjola/liftplan/internal/metrics"
	"github.com/myrjola/liftplan/internal/sqlite"
	"github.com/myrjola/liftplan/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
)

type application struct {
	logger          *slog.Logger
	authenticator   *auth.Authenticator
	sessionManager  *scs.SessionManager
	workoutService  *workout.Service
	db              *sqlite.Database
	metrics         *metrics.Manager
	registry        *prometheus.Registry
	defaultTimezone *time.Location
	exportDir       string
	flightRecorder  *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"LIFTPLAN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"LIFTPLAN_SQLITE_URL" envDefault:"./liftplan.sqlite3"`
	// MaxWeeks is the program length after which the week pointer wraps back to week 1.
	MaxWeeks int `env:"LIFTPLAN_MAX_WEEKS" envDefault:"8"`
	// LookaheadDays bounds how far a rest day reschedule pushes workouts forward.
	LookaheadDays int `env:"LIFTPLAN_LOOKAHEAD_DAYS" envDefault:"7"`
	// DefaultPlan is the plan of users who have not selected one.
	DefaultPlan string `env:"LIFTPLAN_DEFAULT_PLAN" envDefault:"ppl6"`
	// Timezone is the IANA name used for date keys when the client sends no X-Timezone header.
	Timezone string `env:"LIFTPLAN_TIMEZONE" envDefault:"UTC"`
	// DefaultsCacheTTL is how long learned exercise defaults are cached in memory.
	DefaultsCacheTTL time.Duration `env:"LIFTPLAN_DEFAULTS_CACHE_TTL" envDefault:"10m"`
	// SecureCookies should only be disabled when serving plain HTTP, e.g. in local development.
	SecureCookies bool `env:"LIFTPLAN_SECURE_COOKIES" envDefault:"true"`
	// ExportDir is where per-user database exports are written before they are streamed to the client.
	ExportDir string `env:"LIFTPLAN_EXPORT_DIR" envDefault:""`
	// TracesDir enables the flight recorder. Execution traces of timed out requests are written here.
	TracesDir string `env:"LIFTPLAN_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var timezone *time.Location
	if timezone, err = time.LoadLocation(cfg.Timezone); err != nil {
		return errors.Wrap(err, "load timezone", slog.String("timezone", cfg.Timezone))
	}

	var cat *catalog.Catalog
	if cat, err = catalog.Load(); err != nil {
		return errors.Wrap(err, "load catalog")
	}
	if _, ok := cat.Plan(cfg.DefaultPlan); !ok {
		return errors.Wrap(errors.New("unknown default plan"), "validate config",
			slog.String("plan", cfg.DefaultPlan))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db, cfg.SecureCookies)

	registry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("liftplan", "web", registry)

	stores := workout.NewSQLiteStores(db, logger)
	svc := workout.NewService(cat, stores, logger, workout.Config{
		MaxWeeks:         cfg.MaxWeeks,
		LookaheadDays:    cfg.LookaheadDays,
		DefaultPlanID:    cfg.DefaultPlan,
		DefaultsCacheTTL: cfg.DefaultsCacheTTL,
	}, workout.WithMetrics(metricsManager))

	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}

	var recorder *flightrecorder.Recorder
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(logger, cfg.TracesDir, flightrecorder.Options{}); err != nil {
			return errors.Wrap(err, "create flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop()
	}

	app := application{
		logger:          logger,
		authenticator:   auth.New(logger, sessionManager, db),
		sessionManager:  sessionManager,
		workoutService:  svc,
		db:              db,
		metrics:         metricsManager,
		registry:        registry,
		defaultTimezone: timezone,
		exportDir:       exportDir,
		flightRecorder:  recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database, secure bool) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = secure
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
