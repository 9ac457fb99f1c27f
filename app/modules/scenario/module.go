package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariohandlers "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/handlers"
	scenariodb "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories"
	scenariorouter "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/router"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the scenario module.
type Module struct {
	ScenarioService scenarioservice.Service
	ScenarioRouter  *scenariorouter.ScenarioRouter
	cancelFunc      context.CancelFunc
	observability   observability.Observability
}

// NewScenarioModule creates and initializes a new scenario module. A nil db
// selects in-memory history storage. httpRouter may be nil when the HTTP API
// is disabled.
func NewScenarioModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
	db *bun.DB,
	clk clock.Clock,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "scenario.NewScenarioModule initializing")

	// 1. Initialize Repository
	var repo scenariodb.Repository
	if db != nil {
		repo = scenariodb.NewRepository(db)
	} else {
		logger.WarnContext(ctx, "No database configured, scenario histories are kept in memory")
		repo = scenariodb.NewMemoryRepository()
	}

	// 2. Initialize Service
	service := scenarioservice.NewScenarioService(repo, logger, obs.ServiceMetrics(), tracer, db, clk)

	// 3. Initialize Handlers
	handlers := scenariohandlers.NewScenarioHandlers(service, logger, tracer)

	// 4. Initialize Router
	scenarioRouter := scenariorouter.NewScenarioRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.HandlerMetrics(),
	)
	if err := scenarioRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure scenario router: %w", err)
	}

	// 5. HTTP routes
	if httpRouter != nil {
		scenariorouter.MountHTTP(httpRouter, scenariohandlers.NewScenarioHTTPHandlers(service, eventBus, logger, clk))
	}

	return &Module{
		ScenarioService: service,
		ScenarioRouter:  scenarioRouter,
		observability:   obs,
	}, nil
}

// Run starts the scenario module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting scenario module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Scenario module goroutine stopped")
}

// Close shuts down the scenario module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping scenario module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Scenario module stopped")
	return nil
}
