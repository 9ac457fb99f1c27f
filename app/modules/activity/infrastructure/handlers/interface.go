package activityhandlers

import (
	"context"
	"net/http"

	activityevents "github.com/Black-And-White-Club/envsim/events/activity"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
)

// Handlers defines the interface for activity event handlers.
type Handlers interface {
	HandleScenarioRegistered(ctx context.Context, payload *scenarioevents.ScenarioRegisteredPayloadV1) ([]handlerwrapper.Result, error)
	HandleReportGenerated(ctx context.Context, payload *activityevents.ActivityReportGeneratedPayloadV1) ([]handlerwrapper.Result, error)
	HandleCommunityAction(ctx context.Context, payload *activityevents.ActivityCommunityActionPayloadV1) ([]handlerwrapper.Result, error)
}

// HTTPHandlers defines the activity HTTP endpoints.
type HTTPHandlers interface {
	HandleReportGenerated(w http.ResponseWriter, r *http.Request)
	HandleCommunityAction(w http.ResponseWriter, r *http.Request)
	HandleGetMyCounters(w http.ResponseWriter, r *http.Request)
}
