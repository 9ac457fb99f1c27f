package activityrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	activityhandlers "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/handlers"
	activityevents "github.com/Black-And-White-Club/envsim/events/activity"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ActivityRouter handles Watermill handler registration and HTTP routes for
// the activity module.
type ActivityRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// NewActivityRouter creates a new ActivityRouter.
func NewActivityRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	metrics handlerwrapper.Metrics,
) *ActivityRouter {
	return &ActivityRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure sets up the router with handlers.
func (r *ActivityRouter) Configure(_ context.Context, handlers activityhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, scenarioevents.ScenarioRegisteredV1, handlers.HandleScenarioRegistered)
	registerHandler(deps, activityevents.ActivityReportGeneratedV1, handlers.HandleReportGenerated)
	registerHandler(deps, activityevents.ActivityCommunityActionV1, handlers.HandleCommunityAction)

	return nil
}

// MountHTTP registers the REST endpoints on r. Callers apply authentication.
func MountHTTP(r chi.Router, h activityhandlers.HTTPHandlers) {
	r.Route("/activity", func(r chi.Router) {
		r.Post("/reports", h.HandleReportGenerated)
		r.Post("/community", h.HandleCommunityAction)
		r.Get("/me", h.HandleGetMyCounters)
	})
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "activity." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}
