// Package app wires configuration, dependencies and the HTTP server together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/catalog"
	"github.com/Ramsey-B/fern/internal/services/action"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/server"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

// Version is set at build time.
var Version = "dev"

type App struct {
	cfg     config.Config
	logger  ectologger.Logger
	startup *startup.Startup

	db      database.DB
	cache   *cache.Client
	Catalog *catalog.Repository
	Actions *action.Service
}

func New(cfg config.Config, logger ectologger.Logger) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
	}

	if cfg.TracingEnabled {
		var shutdown func(context.Context) error
		a.startup.AddDependency(&startup.Dependency{
			Name: "tracing",
			StartFunc: func(ctx context.Context) (err error) {
				shutdown, err = tracing.Setup(ctx, a.tracingConfig(), logger)
				return err
			},
			StopFunc: func(ctx context.Context) error {
				tracing.SetTracer(nil)
				return shutdown(ctx)
			},
		})
	}

	a.startup.AddDependency(&startup.Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) (err error) {
			a.db, err = database.Open(ctx, a.databaseConfig(), logger)
			return err
		},
		StopFunc: func(ctx context.Context) error {
			return a.db.Close()
		},
	})

	if cfg.CacheEnabled() {
		a.startup.AddDependency(&startup.Dependency{
			Name: "cache",
			StartFunc: func(ctx context.Context) (err error) {
				a.cache, err = cache.NewClient(ctx, cache.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				return err
			},
			StopFunc: func(ctx context.Context) error {
				return a.cache.Close()
			},
		})
	}

	return a
}

// Start brings up every dependency and builds the catalog services. When a
// dependency fails, the ones already started are stopped again.
func (a *App) Start(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), a.seconds(a.cfg.ShutdownTimeoutSeconds))
		defer cancel()
		if stopErr := a.startup.Stop(stopCtx); stopErr != nil {
			a.logger.WithContext(ctx).WithError(stopErr).Error("error stopping dependencies after failed startup")
		}
		return err
	}

	a.Catalog = catalog.NewRepository(a.db, a.cfg.CatalogSchema(), a.logger)

	var snapshots action.SnapshotCache
	if a.cache != nil {
		snapshots = a.cache
	}
	a.Actions = action.NewService(a.Catalog, snapshots, action.Config{
		FetchConcurrency: a.cfg.FetchConcurrency,
		CacheTTL:         a.cfg.CacheTTL,
	}, a.logger)

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	return a.startup.Stop(ctx)
}

// Serve starts the dependencies and runs the HTTP server until ctx ends.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), a.seconds(a.cfg.ShutdownTimeoutSeconds))
		defer cancel()
		if err := a.Stop(stopCtx); err != nil {
			a.logger.WithError(err).Error("error stopping dependencies")
		}
	}()

	var cachePinger health.Pinger
	if a.cache != nil {
		cachePinger = a.cache
	}
	checker := health.NewChecker(a.Catalog, cachePinger, Version)

	srv := server.New(server.Config{
		AppName:           a.cfg.AppName,
		Address:           a.cfg.Address(),
		AllowOrigins:      a.cfg.AllowOrigins,
		ReadTimeout:       a.seconds(a.cfg.HttpServerReadTimeoutSeconds),
		ReadHeaderTimeout: a.seconds(a.cfg.ReadHeaderTimeoutSeconds),
		WriteTimeout:      a.seconds(a.cfg.HttpServerWriteTimeoutSeconds),
		IdleTimeout:       a.seconds(a.cfg.HttpServerIdleTimeoutSeconds),
		ShutdownTimeout:   a.seconds(a.cfg.ShutdownTimeoutSeconds),
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}, a.Actions, checker, a.logger)

	checker.SetReady(true)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (a *App) databaseConfig() database.Config {
	return database.Config{
		Driver:          a.cfg.DatabaseDriver,
		DataSourceName:  a.cfg.DataSourceName(),
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
		ConnMaxIdleTime: a.cfg.DatabaseConnMaxIdleTime,
	}
}

func (a *App) tracingConfig() tracing.Config {
	return tracing.Config{
		ServiceName: a.cfg.AppName,
		Exporter:    a.cfg.TracingExporter,
		SampleRatio: a.cfg.TracingSampleRatio,
		OTLP: exporters.OTLPConfig{
			Endpoint: a.cfg.TracingEndpoint,
			Protocol: a.cfg.TracingProtocol,
			Insecure: a.cfg.TracingInsecure,
			Timeout:  a.cfg.TracingTimeout,
		},
	}
}

func (a *App) seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
