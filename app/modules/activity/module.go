package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	activityservice "github.com/Black-And-White-Club/envsim/app/modules/activity/application"
	activityhandlers "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/handlers"
	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	activityrouter "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/router"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the activity module.
type Module struct {
	ActivityService activityservice.Service
	ActivityRouter  *activityrouter.ActivityRouter
	cancelFunc      context.CancelFunc
	observability   observability.Observability
}

// NewActivityModule creates and initializes a new activity module. Active days
// are keyed in loc, the same location the scenario quota uses.
func NewActivityModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
	db *bun.DB,
	clk clock.Clock,
	loc *time.Location,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "activity.NewActivityModule initializing")

	var repo activitydb.Repository
	if db != nil {
		repo = activitydb.NewRepository(db)
	} else {
		logger.WarnContext(ctx, "No database configured, activity counters are kept in memory")
		repo = activitydb.NewMemoryRepository()
	}

	service := activityservice.NewActivityService(repo, logger, obs.ServiceMetrics(), tracer, db, loc)

	handlers := activityhandlers.NewActivityHandlers(service, logger, tracer, clk)

	activityRouter := activityrouter.NewActivityRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.HandlerMetrics(),
	)
	if err := activityRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure activity router: %w", err)
	}

	if httpRouter != nil {
		activityrouter.MountHTTP(httpRouter, activityhandlers.NewActivityHTTPHandlers(service, logger, clk))
	}

	return &Module{
		ActivityService: service,
		ActivityRouter:  activityRouter,
		observability:   obs,
	}, nil
}

// Run starts the activity module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting activity module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Activity module goroutine stopped")
}

// Close shuts down the activity module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Activity module stopped")
	return nil
}
