package leaderboardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const queueName = "leaderboard"

// Config controls the snapshot schedule.
type Config struct {
	DSN           string
	Interval      time.Duration
	RetentionDays int
}

// Service runs the periodic leaderboard jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.ServiceMetrics
}

// NewService creates a River client with the snapshot and prune jobs
// scheduled every cfg.Interval.
func NewService(ctx context.Context, cfg Config, logger *slog.Logger, metrics observability.ServiceMetrics, snapshotter Snapshotter, pruner Pruner) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_leaderboard_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	// River requires pgx, not database/sql.
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSnapshotWorker(ctxLogger, snapshotter))
	river.AddWorker(workers, NewPruneWorker(ctxLogger, pruner))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
			queueName:          {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(cfg),
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Leaderboard queue service initialized", attr.Duration("interval", cfg.Interval))

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

func periodicJobs(cfg Config) []*river.PeriodicJob {
	opts := &river.InsertOpts{Queue: queueName}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Interval),
			func() (river.JobArgs, *river.InsertOpts) { return SnapshotJob{}, opts },
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return PruneJob{RetentionDays: cfg.RetentionDays}, opts
			},
			nil,
		),
	}
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.logger.Info("Leaderboard queue service started")
	return nil
}

// Stop stops the River client and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Leaderboard queue service stopped")
	return nil
}
