package scenarioservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	scenariodb "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/Black-And-White-Club/envsim/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "ScenarioService"

	// maxRegisterAttempts bounds the re-runs after a version conflict.
	maxRegisterAttempts = 3
)

// ScenarioService implements the Service interface.
type ScenarioService struct {
	repo    scenariodb.Repository
	logger  *slog.Logger
	metrics observability.ScenarioMetrics
	tracer  trace.Tracer
	db      *bun.DB
	clock   clock.Clock
	locks   *userLocks
}

// NewScenarioService creates a new ScenarioService. db may be nil when the
// repository does not need a transaction handle (in-memory storage).
func NewScenarioService(
	repo scenariodb.Repository,
	logger *slog.Logger,
	metrics observability.ScenarioMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
) *ScenarioService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if clk == nil {
		clk = clock.NewLocalClock(nil)
	}
	return &ScenarioService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		clock:   clk,
		locks:   newUserLocks(),
	}
}

// Register records a scenario attempt for userID.
//
// Registrations for the same user are serialized in-process, and the history
// save is a compare-and-swap on its version so two instances cannot both take
// the last quota slot. A lost race re-runs the whole check on fresh history.
func (s *ScenarioService) Register(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (RegistrationResult, error) {
	release := s.locks.Lock(userID)
	defer release()

	result, err := withTelemetry(s, ctx, "Register", userID, func(ctx context.Context) (results.OperationResult[RegistrationResult, error], error) {
		var (
			res results.OperationResult[RegistrationResult, error]
			err error
		)
		for attempt := 1; attempt <= maxRegisterAttempts; attempt++ {
			res, err = runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[RegistrationResult, error], error) {
				return s.registerLogic(ctx, db, userID, input)
			})
			if !errors.Is(err, scenariodb.ErrVersionConflict) {
				break
			}
			s.metrics.RecordVersionConflict(ctx)
			s.logger.WarnContext(ctx, "Scenario history changed during registration",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.Int("attempt", attempt),
			)
		}
		if errors.Is(err, scenariodb.ErrVersionConflict) {
			err = fmt.Errorf("%w: %w", ErrConcurrentRegistration, err)
		}
		return res, err
	})
	if err != nil {
		return FailedRegistration(), err
	}
	if result.IsFailure() {
		return FailedRegistration(), *result.Failure
	}

	if result.Success.Replayed {
		return *result.Success, nil
	}

	outcome := observability.OutcomeCredited
	switch {
	case result.Success.Duplicate:
		outcome = observability.OutcomeDuplicate
	case !result.Success.RewardEligible:
		outcome = observability.OutcomeQuota
	}
	s.metrics.RecordRegistration(ctx, outcome)

	return *result.Success, nil
}

// registerLogic runs the checks, appends the record and persists the history.
func (s *ScenarioService) registerLogic(ctx context.Context, db bun.IDB, userID string, input scenariodomain.ScenarioInput) (results.OperationResult[RegistrationResult, error], error) {
	history, err := s.loadHistory(ctx, db, userID)
	if err != nil {
		return results.OperationResult[RegistrationResult, error]{}, err
	}

	now := s.clock.Now()
	if err := input.Validate(); err != nil {
		return results.FailureResult[RegistrationResult, error](err), nil
	}
	if idx, ok := scenariodomain.FindRequest(input.RequestID, history.Records); ok {
		return results.SuccessResult[RegistrationResult, error](s.replay(ctx, userID, input, history.Records, idx, now)), nil
	}

	assessment, err := scenariodomain.Assess(input, history.Records, now)
	if err != nil {
		return results.FailureResult[RegistrationResult, error](err), nil
	}

	record := assessment.NewRecord(input, now)
	expected := history.Version

	updated := history.Clone()
	updated.Records = append(updated.Records, record)

	if err := s.repo.SaveHistory(ctx, db, updated, expected); err != nil {
		return results.OperationResult[RegistrationResult, error]{}, err
	}

	s.logger.InfoContext(ctx, "Scenario registered",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.Fingerprint(record.Fingerprint),
		attr.Bool("duplicate", assessment.Duplicate),
		attr.Bool("reward_eligible", assessment.RewardEligible),
		attr.Int("remaining_today", assessment.RemainingAfter()),
	)

	return results.SuccessResult[RegistrationResult, error](registrationFromAssessment(assessment, record)), nil
}

// replay answers a retried request with the decision stored for it. Nothing
// is written.
func (s *ScenarioService) replay(ctx context.Context, userID string, input scenariodomain.ScenarioInput, history []scenariodomain.ScenarioRecord, idx int, now time.Time) RegistrationResult {
	rec := history[idx]
	a := scenariodomain.Replay(history, idx, now)

	if fp, err := scenariodomain.Fingerprint(input); err == nil && fp != rec.Fingerprint {
		s.logger.WarnContext(ctx, "Request ID reused with a different scenario",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.String("request_id", input.RequestID),
			attr.Fingerprint(fp),
		)
	}
	s.logger.InfoContext(ctx, "Scenario registration replayed",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.String("request_id", input.RequestID),
		attr.Fingerprint(rec.Fingerprint),
	)

	res := registrationFromAssessment(a, rec)
	res.RemainingToday = a.Quota.Remaining
	res.Replayed = true
	return res
}

// CheckEligibility answers whether input would earn credit right now.
func (s *ScenarioService) CheckEligibility(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (EligibilityResult, error) {
	result, err := withTelemetry(s, ctx, "CheckEligibility", userID, func(ctx context.Context) (results.OperationResult[EligibilityResult, error], error) {
		history, err := s.loadHistory(ctx, nil, userID)
		if err != nil {
			return results.OperationResult[EligibilityResult, error]{}, err
		}

		a, err := scenariodomain.Assess(input, history.Records, s.clock.Now())
		if err != nil {
			return results.FailureResult[EligibilityResult, error](err), nil
		}

		return results.SuccessResult[EligibilityResult, error](EligibilityResult{
			CreditEligible: a.RewardEligible,
			IsDuplicate:    a.Duplicate,
			RemainingToday: a.Quota.Remaining,
			Fingerprint:    a.Fingerprint,
			Message:        a.Message,
		}), nil
	})
	if err != nil {
		return EligibilityResult{}, err
	}
	if result.IsFailure() {
		return EligibilityResult{}, *result.Failure
	}
	return *result.Success, nil
}

// GetHistory returns the user's records, oldest first.
func (s *ScenarioService) GetHistory(ctx context.Context, userID string, since time.Time) ([]scenariodomain.ScenarioRecord, error) {
	result, err := withTelemetry(s, ctx, "GetHistory", userID, func(ctx context.Context) (results.OperationResult[[]scenariodomain.ScenarioRecord, error], error) {
		history, err := s.loadHistory(ctx, nil, userID)
		if err != nil {
			return results.OperationResult[[]scenariodomain.ScenarioRecord, error]{}, err
		}

		records := history.Records
		if !since.IsZero() {
			cutoff := since.UnixMilli()
			records = make([]scenariodomain.ScenarioRecord, 0, len(history.Records))
			for _, rec := range history.Records {
				if rec.Timestamp >= cutoff {
					records = append(records, rec)
				}
			}
		}
		return results.SuccessResult[[]scenariodomain.ScenarioRecord, error](records), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// ClearHistory removes the user's history.
func (s *ScenarioService) ClearHistory(ctx context.Context, userID string) error {
	release := s.locks.Lock(userID)
	defer release()

	_, err := withTelemetry(s, ctx, "ClearHistory", userID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.ClearHistory(ctx, nil, userID); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		s.logger.InfoContext(ctx, "Scenario history cleared", attr.ExtractCorrelationID(ctx), attr.UserID(userID))
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

// loadHistory treats a missing history as an empty one at version 0.
func (s *ScenarioService) loadHistory(ctx context.Context, db bun.IDB, userID string) (*scenariodb.History, error) {
	history, err := s.repo.LoadHistory(ctx, db, userID)
	if err != nil {
		if errors.Is(err, scenariodb.ErrNotFound) {
			return &scenariodb.History{UserID: userID}, nil
		}
		return nil, err
	}
	return history, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScenarioService,
	ctx context.Context,
	operationName string,
	userID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("user_id", userID),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.UserID(userID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.UserID(userID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ScenarioService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
