package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/NullInfinity/society-event-manager/internal/config"
	"github.com/NullInfinity/society-event-manager/internal/db"
	"github.com/NullInfinity/society-event-manager/internal/logger"
	"github.com/NullInfinity/society-event-manager/internal/member"
	"github.com/NullInfinity/society-event-manager/internal/metrics"
	"github.com/NullInfinity/society-event-manager/internal/telemetry"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Options are the command-line overrides applied on top of the loaded
// configuration.
type Options struct {
	ConfigFile string
	DBPath     string
	Unsafe     bool
	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

type App struct {
	config        *config.Config
	logger        *slog.Logger
	store         *member.Store
	meterProvider *sdkmetric.MeterProvider
}

// New loads configuration, opens the membership database and builds the
// store. The caller must Close the App.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}
	if opts.Unsafe {
		cfg.Database.Safe = false
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	slogLogger := logger.New(out, cfg.Env, cfg.Log.Level).With("service", ServiceName)

	// Set as default logger so slog.Info() uses the configured handler
	slog.SetDefault(slogLogger)

	slogLogger.Debug("config loaded", "env", cfg.Env, "version", Version)

	meterProvider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry.OTLPEndpoint, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize OTel metrics", "error", err)
		meterProvider = nil
	}

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		shutdownTelemetry(meterProvider, slogLogger)
		return nil, err
	}
	if err := db.RunMigrations(ctx, database, (*member.Record)(nil)); err != nil {
		db.Close(database)
		shutdownTelemetry(meterProvider, slogLogger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := member.NewStore(database, cfg.Database.Safe,
		member.WithLogger(slogLogger),
		member.WithMetrics(m),
	)

	return &App{
		config:        cfg,
		logger:        slogLogger,
		store:         store,
		meterProvider: meterProvider,
	}, nil
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) Store() *member.Store {
	return a.store
}

// Close commits outstanding writes and releases the database. Metrics
// are flushed afterwards on a best-effort basis.
func (a *App) Close() error {
	err := a.store.Close()
	shutdownTelemetry(a.meterProvider, a.logger)
	return err
}

func shutdownTelemetry(mp *sdkmetric.MeterProvider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(ctx, mp, logger); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}
}
