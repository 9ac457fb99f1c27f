package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	"github.com/Black-And-White-Club/envsim/app/modules/activity"
	"github.com/Black-And-White-Club/envsim/app/modules/leaderboard"
	"github.com/Black-And-White-Club/envsim/app/modules/scenario"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/app/shared/httpapi"
	"github.com/Black-And-White-Club/envsim/config"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	envjwt "github.com/Black-And-White-Club/envsim/pkg/jwt"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"
)

// Version is stamped at build time.
var Version = "dev"

// App wires the modules to the event bus, the database and the HTTP API.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	ScenarioModule    *scenario.Module
	ActivityModule    *activity.Module
	LeaderboardModule *leaderboard.Module

	wg sync.WaitGroup
}

// Initialize builds every component from cfg. Nothing is started until Run.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(ctx, observability.Config{
		ServiceName: "envsim",
		Environment: cfg.Observability.Environment,
		Version:     Version,
		LogLevel:    cfg.Observability.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	if cfg.Postgres.DSN != "" {
		pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
		app.DB = bun.NewDB(pgdb, pgdialect.New())
		if err := app.DB.PingContext(ctx); err != nil {
			_ = app.DB.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.InfoContext(ctx, "Database connection established")
	} else {
		logger.WarnContext(ctx, "DATABASE_URL not set, running with in-memory storage")
	}

	if cfg.NATS.URL != "" {
		app.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
			URL:           cfg.NATS.URL,
			NKeySeed:      cfg.NATS.NKeySeed,
			DurablePrefix: cfg.NATS.DurablePrefix,
		}, logger)
		if err != nil {
			app.closeDB()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "NATS_URL not set, using in-process event bus")
		app.EventBus = eventbus.NewInMemoryEventBus(logger)
	}
	if err := eventbus.InitializeStreams(ctx, app.EventBus, logger); err != nil {
		app.shutdownInfra()
		return nil, err
	}

	app.Router, err = newMessageRouter(obs)
	if err != nil {
		app.shutdownInfra()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		app.shutdownInfra()
		return nil, err
	}
	clk := clock.NewLocalClock(loc)
	tokens := envjwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer)

	root := chi.NewRouter()
	root.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Handle("/metrics", obs.MetricsHandler())

	limiter := httpapi.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)
	var authed, public chi.Router
	root.Route("/api", func(api chi.Router) {
		api.Use(httpapi.RateLimitMiddleware(limiter), httpapi.CORSMiddleware(cfg.HTTP.AllowedOrigins))
		authed = api.With(httpapi.AuthMiddleware(tokens))
		public = api.With(httpapi.OptionalAuthMiddleware(tokens))
	})

	app.ScenarioModule, err = scenario.NewScenarioModule(ctx, obs, app.EventBus, app.Router, authed, app.DB, clk)
	if err != nil {
		app.shutdownInfra()
		return nil, fmt.Errorf("failed to initialize scenario module: %w", err)
	}

	app.ActivityModule, err = activity.NewActivityModule(ctx, obs, app.EventBus, app.Router, authed, app.DB, clk, loc)
	if err != nil {
		app.shutdownInfra()
		return nil, fmt.Errorf("failed to initialize activity module: %w", err)
	}

	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, obs, app.ActivityModule.ActivityService, public, app.DB, clk, leaderboard.Options{
		Weights:          cfg.Leaderboard.Weights,
		DSN:              cfg.Postgres.DSN,
		SnapshotInterval: cfg.Leaderboard.SnapshotInterval,
		RetentionDays:    cfg.Leaderboard.RetentionDays,
	})
	if err != nil {
		app.shutdownInfra()
		return nil, fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_addr", cfg.HTTP.Addr),
		attr.String("timezone", loc.String()),
	)
	return app, nil
}

func newMessageRouter(obs observability.Observability) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(obs.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(obs.Logger),
		}.Middleware,
	)

	if obs.Registry != nil {
		metrics.NewPrometheusMetricsBuilder(obs.Registry, "envsim", "").AddPrometheusRouterMetrics(router)
	}
	return router, nil
}

// Run starts the modules, the message router and the HTTP server and blocks
// until ctx is cancelled or a component fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(3)
	go app.ScenarioModule.Run(ctx, &app.wg)
	go app.ActivityModule.Run(ctx, &app.wg)
	go app.LeaderboardModule.Run(ctx, &app.wg)

	errCh := make(chan error, 2)
	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router: %w", err)
		}
	}()
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown requested")
		return nil
	case err := <-errCh:
		logger.ErrorContext(ctx, "Component failed", attr.Error(err))
		return err
	}
}

// Close stops every component in reverse start order. It must only be called
// on an App returned by Initialize.
func (app *App) Close() error {
	logger := app.Observability.Logger
	var errs []error

	if app.HTTPServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.HTTPServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
		cancel()
	}

	modules := []struct {
		name string
		m    interface{ Close() error }
	}{
		{"leaderboard", app.LeaderboardModule},
		{"activity", app.ActivityModule},
		{"scenario", app.ScenarioModule},
	}
	for _, mod := range modules {
		if err := mod.m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s module: %w", mod.name, err))
		}
	}
	app.wg.Wait()

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("message router: %w", err))
		}
	}
	app.shutdownInfra()

	logger.Info("Application stopped")
	return errors.Join(errs...)
}

func (app *App) shutdownInfra() {
	if closer, ok := app.EventBus.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.Observability.Logger.Error("Failed to close event bus", attr.Error(err))
		}
	}
	app.closeDB()
}

func (app *App) closeDB() {
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Observability.Logger.Error("Failed to close database", attr.Error(err))
		}
	}
}
