// Package bootstrap wires all dependencies of the command line tool.
// Only the catalogue root and logging come from the environment; everything
// else is read from the tool configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RADAR-base/RADAR-Schemas/adapters/avro"
	"github.com/RADAR-base/RADAR-Schemas/adapters/clock"
	"github.com/RADAR-base/RADAR-Schemas/adapters/idgen"
	"github.com/RADAR-base/RADAR-Schemas/adapters/metrics"
	"github.com/RADAR-base/RADAR-Schemas/adapters/sqlite"
	"github.com/RADAR-base/RADAR-Schemas/app"
	"github.com/RADAR-base/RADAR-Schemas/config"
)

// Environment variable names for bootstrap configuration.
const (
	EnvRoot      = "RADAR_SCHEMAS_ROOT"
	EnvLogLevel  = "RADAR_SCHEMAS_LOG_LEVEL"
	EnvLogFormat = "RADAR_SCHEMAS_LOG_FORMAT"
)

// Options configures application initialization.
type Options struct {
	// Root is the catalogue root. Defaults to $RADAR_SCHEMAS_ROOT or the
	// working directory.
	Root string

	// ConfigPath is the tool configuration. Defaults to schemas.yml in the
	// root; a missing file yields the default configuration.
	ConfigPath string

	// LogLevel overrides the configured log level.
	LogLevel string

	// LogOutput receives logs. Defaults to stderr.
	LogOutput io.Writer
}

// App holds the wired services of one invocation.
type App struct {
	Logger  zerolog.Logger
	Config  *config.Holder
	Metrics *metrics.Collector
	Parser  *avro.Parser
	Root    string

	mu        sync.Mutex
	catalogue *app.CatalogueService
	db        *sqlite.DB
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	logger := setupLoggerFromEnv(opts.LogOutput)

	root := opts.Root
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFile)
	}
	holder, err := config.NewHolder(cfgPath, logger)
	if err != nil {
		return nil, err
	}

	cfg := holder.Get()
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err = setupLogger(opts.LogOutput, level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	a := &App{
		Logger:  logger,
		Config:  holder,
		Metrics: metrics.New(),
		Parser:  avro.NewParser(),
		Root:    root,
	}
	if err := a.Reload(); err != nil {
		return nil, err
	}
	logger.Debug().Str("root", root).Str("config", cfgPath).Msg("initialized")
	return a, nil
}

// Reload rebuilds the catalogue service from the current configuration.
func (a *App) Reload() error {
	svc, err := app.NewCatalogueService(a.Root, a.Config.Get(), a.Parser, a.Metrics, a.Logger)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.catalogue = svc
	a.mu.Unlock()
	return nil
}

// Catalogue returns the current catalogue service.
func (a *App) Catalogue() *app.CatalogueService {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalogue
}

// Snapshots opens the snapshot database on first use and returns the
// snapshot service. A relative database path is relative to the root.
func (a *App) Snapshots(ctx context.Context) (*app.SnapshotService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db == nil {
		path := a.Config.Get().Snapshots.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.Root, path)
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.db = db
		a.Logger.Debug().Str("path", path).Msg("snapshot database opened")
	}
	store := sqlite.NewSnapshotStore(a.db)
	return app.NewSnapshotService(store, idgen.TimeOrdered{}, clock.System{}, a.Parser, a.Logger), nil
}

// WriteMetrics writes the collected metrics to path, or to the configured
// metrics file if path is empty. Nothing is written if neither is set.
func (a *App) WriteMetrics(path string) error {
	if path == "" {
		path = a.Config.Get().Metrics.File
	}
	if path == "" {
		return nil
	}
	if err := a.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.Logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}

// Close stops watching and closes the snapshot database.
func (a *App) Close() error {
	a.Config.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}

func setupLoggerFromEnv(out io.Writer) zerolog.Logger {
	levelStr := os.Getenv(EnvLogLevel)
	if levelStr == "" {
		levelStr = "info"
	}
	format := os.Getenv(EnvLogFormat)
	if format == "" {
		format = "console"
	}

	logger, err := setupLogger(out, levelStr, format)
	if err != nil {
		logger, _ = setupLogger(out, "info", format)
	}
	return logger
}

func setupLogger(out io.Writer, levelStr, format string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", levelStr, err)
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
