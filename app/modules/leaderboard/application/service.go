package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "LeaderboardService"

	// rankHistoryLimit bounds the points drawn on a rank history chart.
	rankHistoryLimit = 90
)

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	counters  CountersSource
	snapshots leaderboarddb.Repository
	weights   leaderboarddomain.ScoreWeights
	palette   ChartPalette
	logger    *slog.Logger
	metrics   observability.ServiceMetrics
	tracer    trace.Tracer
	clock     clock.Clock
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	counters CountersSource,
	snapshots leaderboarddb.Repository,
	weights leaderboarddomain.ScoreWeights,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	clk clock.Clock,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if clk == nil {
		clk = clock.NewLocalClock(nil)
	}
	return &LeaderboardService{
		counters:  counters,
		snapshots: snapshots,
		weights:   weights,
		palette:   DefaultPalette,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		clock:     clk,
	}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, currentUserID string) ([]leaderboarddomain.LeaderboardEntry, error) {
	var out []leaderboarddomain.LeaderboardEntry
	err := s.withTelemetry(ctx, "GetLeaderboard", func(ctx context.Context) error {
		var err error
		out, err = s.rank(ctx, currentUserID)
		return err
	})
	return out, err
}

func (s *LeaderboardService) ExportXLSX(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.withTelemetry(ctx, "ExportXLSX", func(ctx context.Context) error {
		entries, err := s.rank(ctx, "")
		if err != nil {
			return err
		}
		out, err = GenerateLeaderboardWorkbook(entries, s.weights, s.clock.Now())
		return err
	})
	return out, err
}

func (s *LeaderboardService) RankHistory(ctx context.Context, userID string) ([]leaderboarddb.RankPoint, error) {
	var out []leaderboarddb.RankPoint
	err := s.withTelemetry(ctx, "RankHistory", func(ctx context.Context) error {
		var err error
		out, err = s.snapshots.RankHistory(ctx, nil, userID, rankHistoryLimit)
		return err
	})
	return out, err
}

func (s *LeaderboardService) RankHistoryChart(ctx context.Context, userID string) ([]byte, error) {
	points, err := s.RankHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GenerateRankHistoryChart(points, s.palette)
}

func (s *LeaderboardService) TakeSnapshot(ctx context.Context) (int, error) {
	var n int
	err := s.withTelemetry(ctx, "TakeSnapshot", func(ctx context.Context) error {
		entries, err := s.rank(ctx, "")
		if err != nil {
			return err
		}
		takenAt := s.clock.Now()
		if err := s.snapshots.SaveSnapshot(ctx, nil, takenAt, entries); err != nil {
			return err
		}
		n = len(entries)
		s.logger.InfoContext(ctx, "Leaderboard snapshot stored",
			attr.ExtractCorrelationID(ctx),
			attr.Int("entries", n),
			attr.Time("taken_at", takenAt),
		)
		return nil
	})
	return n, err
}

func (s *LeaderboardService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.withTelemetry(ctx, "PruneBefore", func(ctx context.Context) error {
		var err error
		n, err = s.snapshots.PruneBefore(ctx, nil, cutoff)
		return err
	})
	return n, err
}

func (s *LeaderboardService) rank(ctx context.Context, currentUserID string) ([]leaderboarddomain.LeaderboardEntry, error) {
	counters, err := s.counters.ListCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity counters: %w", err)
	}
	inputs := make([]leaderboarddomain.RankInput, len(counters))
	for i, c := range counters {
		inputs[i] = toRankInput(c)
	}
	return leaderboarddomain.RankEntries(inputs, s.weights, currentUserID), nil
}

func toRankInput(c activitydomain.UserActivityCounters) leaderboarddomain.RankInput {
	return leaderboarddomain.RankInput{
		UserID: c.UserID,
		Counts: leaderboarddomain.ActivityCounts{
			Reports:     c.ReportsGenerated,
			Community:   c.CommunityActions,
			Simulations: c.SimulationsRun,
		},
		CreatedAt: c.CreatedAt,
	}
}

// withTelemetry wraps an operation with tracing, metrics and panic recovery.
func (s *LeaderboardService) withTelemetry(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+op, trace.WithAttributes(attribute.String("operation", op)))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, op, serviceName)
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, op, serviceName, time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", op, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", attr.ExtractCorrelationID(ctx), attr.Error(err))
			s.metrics.RecordOperationFailure(ctx, op, serviceName)
			span.RecordError(err)
		}
	}()

	if err = fn(ctx); err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", op),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, op, serviceName)
		span.RecordError(err)
		return err
	}

	s.metrics.RecordOperationSuccess(ctx, op, serviceName)
	return nil
}
