package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboardhandlers "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/handlers"
	leaderboardqueue "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/queue"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/router"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Options configures the leaderboard module.
type Options struct {
	Weights leaderboarddomain.ScoreWeights

	// DSN enables the periodic snapshot jobs. Empty disables them.
	DSN              string
	SnapshotInterval time.Duration
	RetentionDays    int
}

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	queue              *leaderboardqueue.Service
	cancelFunc         context.CancelFunc
	observability      observability.Observability
}

// NewLeaderboardModule creates the leaderboard module. Rankings are computed
// from counters on every request.
func NewLeaderboardModule(
	ctx context.Context,
	obs observability.Observability,
	counters leaderboardservice.CountersSource,
	httpRouter chi.Router,
	db *bun.DB,
	clk clock.Clock,
	opts Options,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule initializing")

	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}

	var repo leaderboarddb.Repository
	if db != nil {
		repo = leaderboarddb.NewRepository(db)
	} else {
		repo = leaderboarddb.NewMemoryRepository()
	}

	service := leaderboardservice.NewLeaderboardService(counters, repo, opts.Weights, logger, obs.ServiceMetrics(), tracer, clk)

	module := &Module{
		LeaderboardService: service,
		observability:      obs,
	}

	if opts.DSN != "" && opts.SnapshotInterval > 0 {
		queue, err := leaderboardqueue.NewService(ctx, leaderboardqueue.Config{
			DSN:           opts.DSN,
			Interval:      opts.SnapshotInterval,
			RetentionDays: opts.RetentionDays,
		}, logger, obs.ServiceMetrics(), service, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create leaderboard queue: %w", err)
		}
		module.queue = queue
	} else {
		logger.WarnContext(ctx, "Leaderboard snapshots disabled")
	}

	if httpRouter != nil {
		leaderboardrouter.MountHTTP(httpRouter, leaderboardhandlers.NewLeaderboardHTTPHandlers(service, logger, clk))
	}

	return module, nil
}

// Run starts the snapshot queue, if any, and blocks until ctx ends.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Leaderboard queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close shuts down the leaderboard module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.queue.Stop(stopCtx); err != nil {
			return err
		}
	}
	m.observability.Logger.Info("Leaderboard module stopped")
	return nil
}
