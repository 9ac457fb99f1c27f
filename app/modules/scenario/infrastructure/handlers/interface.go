package scenariohandlers

import (
	"context"
	"net/http"

	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
)

// Handlers defines the interface for scenario event handlers.
type Handlers interface {
	// HandleRegistrationRequested registers a run received over the event bus.
	HandleRegistrationRequested(ctx context.Context, payload *scenarioevents.ScenarioRegistrationRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// HTTPHandlers defines the scenario HTTP endpoints.
type HTTPHandlers interface {
	HandleRegister(w http.ResponseWriter, r *http.Request)
	HandleCheckEligibility(w http.ResponseWriter, r *http.Request)
	HandleGetHistory(w http.ResponseWriter, r *http.Request)
	HandleClearHistory(w http.ResponseWriter, r *http.Request)
}
