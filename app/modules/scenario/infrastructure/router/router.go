package scenariorouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	scenariohandlers "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/handlers"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ScenarioRouter handles Watermill handler registration and HTTP routes for
// the scenario module.
type ScenarioRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// NewScenarioRouter creates a new ScenarioRouter.
func NewScenarioRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	metrics handlerwrapper.Metrics,
) *ScenarioRouter {
	return &ScenarioRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure sets up the router with handlers.
func (r *ScenarioRouter) Configure(_ context.Context, handlers scenariohandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	r.logger.Info("Registering scenario module handlers",
		slog.String("registration_subject", scenarioevents.ScenarioRegistrationRequestedV1),
	)

	registerHandler(deps, scenarioevents.ScenarioRegistrationRequestedV1, handlers.HandleRegistrationRequested)

	return nil
}

// MountHTTP registers the REST endpoints on r. Callers apply authentication.
func MountHTTP(r chi.Router, h scenariohandlers.HTTPHandlers) {
	r.Route("/scenarios", func(r chi.Router) {
		r.Post("/register", h.HandleRegister)
		r.Post("/eligibility", h.HandleCheckEligibility)
		r.Get("/history", h.HandleGetHistory)
		r.Delete("/history", h.HandleClearHistory)
	})
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "scenario." + topic

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
