package activityhandlers

import (
	"log/slog"
	"net/http"

	activityservice "github.com/Black-And-White-Club/envsim/app/modules/activity/application"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/app/shared/httpapi"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
)

// ActivityHTTPHandlers serves the activity REST endpoints.
type ActivityHTTPHandlers struct {
	service activityservice.Service
	logger  *slog.Logger
	clock   clock.Clock
}

// NewActivityHTTPHandlers creates a new ActivityHTTPHandlers.
func NewActivityHTTPHandlers(service activityservice.Service, logger *slog.Logger, clk clock.Clock) *ActivityHTTPHandlers {
	return &ActivityHTTPHandlers{service: service, logger: logger, clock: clk}
}

// CommunityActionRequest is the body of POST /activity/community.
type CommunityActionRequest struct {
	Action string `json:"action"`
}

func (h *ActivityHTTPHandlers) HandleReportGenerated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httpapi.UserIDFromContext(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.service.RecordReport(ctx, userID, "", h.clock.Now()); err != nil {
		h.fail(w, r, userID, err)
		return
	}
	h.writeCounters(w, r, userID, http.StatusAccepted)
}

func (h *ActivityHTTPHandlers) HandleCommunityAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httpapi.UserIDFromContext(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req CommunityActionRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil || req.Action == "" {
		httpapi.WriteError(w, http.StatusBadRequest, "action is required")
		return
	}

	if err := h.service.RecordCommunityAction(ctx, userID, h.clock.Now()); err != nil {
		h.fail(w, r, userID, err)
		return
	}
	h.logger.InfoContext(ctx, "Community action recorded", attr.UserID(userID), attr.String("action", req.Action))
	h.writeCounters(w, r, userID, http.StatusAccepted)
}

func (h *ActivityHTTPHandlers) HandleGetMyCounters(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.UserIDFromContext(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	h.writeCounters(w, r, userID, http.StatusOK)
}

func (h *ActivityHTTPHandlers) writeCounters(w http.ResponseWriter, r *http.Request, userID string, status int) {
	counters, err := h.service.GetCounters(r.Context(), userID)
	if err != nil {
		h.fail(w, r, userID, err)
		return
	}
	httpapi.WriteJSON(w, status, counters)
}

func (h *ActivityHTTPHandlers) fail(w http.ResponseWriter, r *http.Request, userID string, err error) {
	h.logger.ErrorContext(r.Context(), "Activity request failed", attr.UserID(userID), attr.Error(err))
	httpapi.WriteError(w, http.StatusInternalServerError, "activity could not be recorded, please try again")
}
