package activityhandlers

import (
	"context"
	"log/slog"
	"time"

	activityservice "github.com/Black-And-White-Club/envsim/app/modules/activity/application"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	activityevents "github.com/Black-And-White-Club/envsim/events/activity"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// ActivityHandlers implements the Handlers interface.
type ActivityHandlers struct {
	service activityservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   clock.Clock
}

// NewActivityHandlers creates a new ActivityHandlers instance.
func NewActivityHandlers(
	service activityservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	clk clock.Clock,
) *ActivityHandlers {
	return &ActivityHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		clock:   clk,
	}
}

// HandleScenarioRegistered updates counters for every persisted registration.
// Only credited runs count as simulations.
func (h *ActivityHandlers) HandleScenarioRegistered(ctx context.Context, payload *scenarioevents.ScenarioRegisteredPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.startSpan(ctx, "ActivityHandlers.HandleScenarioRegistered")
	defer span.End()

	if payload.UserID == "" {
		h.logger.WarnContext(ctx, "Dropping scenario registration without user", attr.ExtractCorrelationID(ctx))
		return nil, nil
	}

	return nil, h.service.RecordScenarioRun(ctx, payload.UserID, payload.RecordID, payload.RewardEligible, h.occurredAt(payload.RegisteredAt))
}

func (h *ActivityHandlers) HandleReportGenerated(ctx context.Context, payload *activityevents.ActivityReportGeneratedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.startSpan(ctx, "ActivityHandlers.HandleReportGenerated")
	defer span.End()

	if payload.UserID == "" {
		h.logger.WarnContext(ctx, "Dropping report event without user", attr.ExtractCorrelationID(ctx))
		return nil, nil
	}

	return nil, h.service.RecordReport(ctx, payload.UserID, payload.ReportID, h.occurredAt(payload.OccurredAt))
}

func (h *ActivityHandlers) HandleCommunityAction(ctx context.Context, payload *activityevents.ActivityCommunityActionPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.startSpan(ctx, "ActivityHandlers.HandleCommunityAction")
	defer span.End()

	if payload.UserID == "" {
		h.logger.WarnContext(ctx, "Dropping community event without user", attr.ExtractCorrelationID(ctx))
		return nil, nil
	}

	return nil, h.service.RecordCommunityAction(ctx, payload.UserID, h.occurredAt(payload.OccurredAt))
}

func (h *ActivityHandlers) occurredAt(t time.Time) time.Time {
	if t.IsZero() {
		return h.clock.Now()
	}
	return t
}

func (h *ActivityHandlers) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, name)
}
