package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/fitroadmap/internal/envstruct"
	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/flightrecorder"
	"github.com/myrjola/fitroadmap/internal/logging"
	"github.com/myrjola/fitroadmap/internal/metrics"
	"github.com/myrjola/fitroadmap/internal/planai"
	"github.com/myrjola/fitroadmap/internal/sqlite"
	"github.com/myrjola/fitroadmap/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	workoutService *workout.Service
	planClient     *planai.Client
	metrics        *metrics.Manager
	gatherer       prometheus.Gatherer
	flightRecorder *flightrecorder.Service
	planTimeout    time.Duration
	now            func() time.Time
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITROADMAP_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITROADMAP_SQLITE_URL" envDefault:"./fitroadmap.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"FITROADMAP_TEMPLATE_PATH" envDefault:""`
	// OpenAIAPIKey enables the generated plans. Without it /api/plan always serves the fallback plan.
	OpenAIAPIKey string `env:"FITROADMAP_OPENAI_API_KEY" envDefault:""`
	// OpenAIBaseURL overrides the API endpoint, for example to point at a compatible proxy.
	OpenAIBaseURL string `env:"FITROADMAP_OPENAI_BASE_URL" envDefault:""`
	OpenAIModel   string `env:"FITROADMAP_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	// LLMTimeout bounds a single plan generation.
	LLMTimeout time.Duration `env:"FITROADMAP_LLM_TIMEOUT" envDefault:"15s"`
	// PlanCacheMB is the size of the generated plan cache in MiB.
	PlanCacheMB int `env:"FITROADMAP_PLAN_CACHE_MB" envDefault:"8"`
	// TracesDir enables the flight recorder. Timed out requests write their runtime trace there.
	TracesDir string `env:"FITROADMAP_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	defer sessionStore.StopCleanup()

	var recorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{ //nolint:exhaustruct // defaults.
			Logger:          logger,
			TracesDirectory: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	registry := metrics.NewRegistry()
	metricsManager := metrics.NewManager("fitroadmap", "web", registry)

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(sessionStore),
		templateFS:     os.DirFS(htmlTemplatePath),
		workoutService: workout.NewService(db, logger),
		planClient: planai.New(planai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Timeout:     cfg.LLMTimeout,
			CacheSizeMB: cfg.PlanCacheMB,
		}, metricsManager, logger),
		metrics:        metricsManager,
		gatherer:       registry,
		flightRecorder: recorder,
		planTimeout:    cfg.LLMTimeout,
		now:            time.Now,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// initializeSessionManager stores sessions next to the user data. The session only carries the anonymous user
// key, so it lives long.
func initializeSessionManager(store scs.Store) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = 365 * 24 * time.Hour   //nolint:mnd // a year
	sessionManager.IdleTimeout = 90 * 24 * time.Hour //nolint:mnd // a quarter
	sessionManager.Cookie.Name = "fitroadmap_session"
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	// The logger exists before the config is parsed.
	level := logging.ParseLevel(os.Getenv("FITROADMAP_LOG_LEVEL"))
	logger := logging.NewLogger(os.Stdout, level, nil)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
