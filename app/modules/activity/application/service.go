package activityservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ActivityService"

// ActivityService implements the Service interface.
type ActivityService struct {
	repo    activitydb.Repository
	logger  *slog.Logger
	metrics observability.ServiceMetrics
	tracer  trace.Tracer
	db      *bun.DB
	loc     *time.Location
}

// NewActivityService creates a new ActivityService. Active days are keyed in loc.
func NewActivityService(
	repo activitydb.Repository,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	loc *time.Location,
) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		loc:     loc,
	}
}

func (s *ActivityService) IncrementSimulations(ctx context.Context, userID string) error {
	return s.increment(ctx, "IncrementSimulations", userID, activitydomain.CounterSimulations)
}

func (s *ActivityService) IncrementReports(ctx context.Context, userID string) error {
	return s.increment(ctx, "IncrementReports", userID, activitydomain.CounterReports)
}

func (s *ActivityService) IncrementCommunity(ctx context.Context, userID string) error {
	return s.increment(ctx, "IncrementCommunity", userID, activitydomain.CounterCommunity)
}

func (s *ActivityService) increment(ctx context.Context, op, userID string, counter activitydomain.Counter) error {
	return s.withTelemetry(ctx, op, userID, func(ctx context.Context) error {
		return s.repo.Increment(ctx, nil, userID, counter, 1)
	})
}

func (s *ActivityService) RecordActiveDay(ctx context.Context, userID string, at time.Time) error {
	return s.withTelemetry(ctx, "RecordActiveDay", userID, func(ctx context.Context) error {
		_, err := s.repo.RecordActiveDay(ctx, nil, userID, s.dayKey(at))
		return err
	})
}

func (s *ActivityService) RecordScenarioRun(ctx context.Context, userID, recordID string, rewardEligible bool, at time.Time) error {
	return s.withTelemetry(ctx, "RecordScenarioRun", userID, func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fresh, err := s.claim(ctx, db, userID, scenarioKey(recordID))
			if err != nil || !fresh {
				return err
			}

			day := s.dayKey(at)
			added, err := s.repo.RecordActiveDay(ctx, db, userID, day)
			if err != nil {
				return err
			}
			if rewardEligible {
				if err := s.repo.Increment(ctx, db, userID, activitydomain.CounterSimulations, 1); err != nil {
					return err
				}
			}
			s.logger.InfoContext(ctx, "Scenario run recorded",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.String("record_id", recordID),
				attr.String("day", day),
				attr.Bool("new_active_day", added),
				attr.Bool("reward_eligible", rewardEligible),
			)
			return nil
		})
	})
}

func (s *ActivityService) RecordReport(ctx context.Context, userID, reportID string, at time.Time) error {
	return s.recordActivity(ctx, "RecordReport", userID, reportKey(reportID), activitydomain.CounterReports, at)
}

func (s *ActivityService) RecordCommunityAction(ctx context.Context, userID string, at time.Time) error {
	return s.recordActivity(ctx, "RecordCommunityAction", userID, "", activitydomain.CounterCommunity, at)
}

// recordActivity marks the day before incrementing. Without a database the
// writes are not atomic, but the day insert is idempotent, so a retry after a
// failed day insert still counts the activity once.
func (s *ActivityService) recordActivity(ctx context.Context, op, userID, key string, counter activitydomain.Counter, at time.Time) error {
	return s.withTelemetry(ctx, op, userID, func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			day := s.dayKey(at)
			added, err := s.repo.RecordActiveDay(ctx, db, userID, day)
			if err != nil {
				return err
			}

			fresh, err := s.claim(ctx, db, userID, key)
			if err != nil || !fresh {
				return err
			}
			if err := s.repo.Increment(ctx, db, userID, counter, 1); err != nil {
				return err
			}
			s.logger.InfoContext(ctx, "Activity recorded",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.String("counter", string(counter)),
				attr.String("day", day),
				attr.Bool("new_active_day", added),
			)
			return nil
		})
	})
}

// claim reports whether the event behind key has not moved a counter yet.
// Events without an ID cannot be deduplicated and always count.
func (s *ActivityService) claim(ctx context.Context, db bun.IDB, userID, key string) (bool, error) {
	if key == "" {
		return true, nil
	}
	fresh, err := s.repo.MarkCounted(ctx, db, userID, key)
	if err != nil {
		return false, err
	}
	if !fresh {
		s.logger.InfoContext(ctx, "Event already counted",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.String("event_key", key),
		)
	}
	return fresh, nil
}

func scenarioKey(recordID string) string {
	if recordID == "" {
		return ""
	}
	return "scenario:" + recordID
}

func reportKey(reportID string) string {
	if reportID == "" {
		return ""
	}
	return "report:" + reportID
}

func (s *ActivityService) GetCounters(ctx context.Context, userID string) (activitydomain.UserActivityCounters, error) {
	var out activitydomain.UserActivityCounters
	err := s.withTelemetry(ctx, "GetCounters", userID, func(ctx context.Context) error {
		c, err := s.repo.GetCounters(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, activitydb.ErrNotFound) {
				out = activitydomain.UserActivityCounters{UserID: userID, ActiveDays: []string{}}
				return nil
			}
			return err
		}
		out = *c
		return nil
	})
	return out, err
}

func (s *ActivityService) ListCounters(ctx context.Context) ([]activitydomain.UserActivityCounters, error) {
	var out []activitydomain.UserActivityCounters
	err := s.withTelemetry(ctx, "ListCounters", "", func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListCounters(ctx, nil)
		return err
	})
	return out, err
}

func (s *ActivityService) dayKey(at time.Time) string {
	return clock.DayKey(at.In(s.loc))
}

// withTelemetry wraps an operation with tracing, metrics and panic recovery.
func (s *ActivityService) withTelemetry(ctx context.Context, op, userID string, fn func(ctx context.Context) error) (err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+op, trace.WithAttributes(
			attribute.String("operation", op),
			attribute.String("user_id", userID),
		))
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
			attr.UserID(userID),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, op, serviceName)
		span.RecordError(err)
		return err
	}

	s.metrics.RecordOperationSuccess(ctx, op, serviceName)
	return nil
}

// runInTx ensures the operation runs within a transaction.
func (s *ActivityService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
