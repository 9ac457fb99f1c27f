package scenariohandlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// ScenarioHandlers implements the Handlers interface.
type ScenarioHandlers struct {
	service scenarioservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScenarioHandlers creates a new ScenarioHandlers instance.
func NewScenarioHandlers(
	service scenarioservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *ScenarioHandlers {
	return &ScenarioHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleRegistrationRequested registers the run and announces the decision.
// Invalid input produces a failure event; storage errors are returned so the
// message is redelivered.
func (h *ScenarioHandlers) HandleRegistrationRequested(ctx context.Context, payload *scenarioevents.ScenarioRegistrationRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.Start(ctx, "ScenarioHandlers.HandleRegistrationRequested")
		defer span.End()
	}

	if payload.UserID == "" {
		return []handlerwrapper.Result{failed(payload.UserID, "missing user_id")}, nil
	}

	res, err := h.service.Register(ctx, payload.UserID, scenariodomain.ScenarioInput{
		Zone:      payload.Zone,
		Trees:     payload.Trees,
		Traffic:   payload.Traffic,
		Waste:     payload.Waste,
		Cooling:   payload.Cooling,
		RequestID: payload.RequestID,
	})
	if err != nil {
		var verr *scenariodomain.ValidationError
		if errors.As(err, &verr) {
			h.logger.WarnContext(ctx, "Rejected scenario registration",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(payload.UserID),
				attr.Error(err),
			)
			return []handlerwrapper.Result{failed(payload.UserID, verr.Error())}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{registered(payload.UserID, res)}, nil
}

// registered builds the scenario.registered.v1 result for a completed registration.
func registered(userID string, res scenarioservice.RegistrationResult) handlerwrapper.Result {
	out := &scenarioevents.ScenarioRegisteredPayloadV1{
		UserID:         userID,
		Fingerprint:    res.Fingerprint,
		Duplicate:      res.Duplicate,
		RewardEligible: res.RewardEligible,
		RemainingToday: res.RemainingToday,
		Message:        res.Message,
	}
	if res.Record != nil {
		out.RecordID = res.Record.ID.String()
		out.RequestID = res.Record.RequestID
		out.Zone = res.Record.Zone
		out.RegisteredAt = time.UnixMilli(res.Record.Timestamp).UTC()
	}
	return handlerwrapper.Result{Topic: scenarioevents.ScenarioRegisteredV1, Payload: out}
}

func failed(userID, reason string) handlerwrapper.Result {
	return handlerwrapper.Result{
		Topic: scenarioevents.ScenarioRegistrationFailedV1,
		Payload: &scenarioevents.ScenarioRegistrationFailedPayloadV1{
			UserID:  userID,
			Reason:  reason,
			Message: scenariodomain.MessageTryAgain,
		},
	}
}
