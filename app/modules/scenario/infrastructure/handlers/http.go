package scenariohandlers

import (
	"errors"
	"log/slog"
	"net/http"

	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/app/shared/httpapi"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5/middleware"
)

// ScenarioHTTPHandlers serves the scenario REST endpoints.
type ScenarioHTTPHandlers struct {
	service   scenarioservice.Service
	publisher message.Publisher
	logger    *slog.Logger
	clock     clock.Clock
}

// NewScenarioHTTPHandlers creates a new ScenarioHTTPHandlers. Registrations
// accepted over HTTP are announced on publisher, which may be nil.
func NewScenarioHTTPHandlers(service scenarioservice.Service, publisher message.Publisher, logger *slog.Logger, clk clock.Clock) *ScenarioHTTPHandlers {
	return &ScenarioHTTPHandlers{service: service, publisher: publisher, logger: logger, clock: clk}
}

// IdempotencyKeyHeader carries the request ID when the body has none.
const IdempotencyKeyHeader = "Idempotency-Key"

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	Records []scenariodomain.ScenarioRecord `json:"records"`
}

func (h *ScenarioHTTPHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, input, ok := h.readInput(w, r)
	if !ok {
		return
	}
	if input.RequestID == "" {
		input.RequestID = r.Header.Get(IdempotencyKeyHeader)
	}

	res, err := h.service.Register(ctx, userID, input)
	if err != nil {
		if isValidation(err) {
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Scenario registration failed", attr.UserID(userID), attr.Error(err))
		// The body still carries the not-eligible default.
		status := http.StatusInternalServerError
		if errors.Is(err, scenarioservice.ErrConcurrentRegistration) {
			status = http.StatusConflict
		}
		httpapi.WriteJSON(w, status, res)
		return
	}

	h.announce(r, userID, res)
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// announce publishes the registration outcome. The decision is already
// persisted, so a publish failure is logged and not reported to the caller.
func (h *ScenarioHTTPHandlers) announce(r *http.Request, userID string, res scenarioservice.RegistrationResult) {
	if h.publisher == nil {
		return
	}
	ctx := r.Context()
	msg, err := handlerwrapper.NewMessage(registered(userID, res), middleware.GetReqID(ctx))
	if err == nil {
		err = h.publisher.Publish("", msg)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to publish scenario registration", attr.UserID(userID), attr.Error(err))
	}
}

func (h *ScenarioHTTPHandlers) HandleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	res, err := h.service.CheckEligibility(ctx, userID, input)
	if err != nil {
		if isValidation(err) {
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Eligibility check failed", attr.UserID(userID), attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, scenariodomain.MessageTryAgain)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *ScenarioHTTPHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httpapi.UserIDFromContext(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	since, err := clock.ParseSince(r.URL.Query().Get("since"), h.clock.Now())
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.service.GetHistory(ctx, userID, since)
	if err != nil {
		h.logger.ErrorContext(ctx, "History lookup failed", attr.UserID(userID), attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, scenariodomain.MessageTryAgain)
		return
	}
	if records == nil {
		records = []scenariodomain.ScenarioRecord{}
	}

	httpapi.WriteJSON(w, http.StatusOK, HistoryResponse{Records: records})
}

func (h *ScenarioHTTPHandlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httpapi.UserIDFromContext(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.service.ClearHistory(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "History reset failed", attr.UserID(userID), attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, scenariodomain.MessageTryAgain)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScenarioHTTPHandlers) readInput(w http.ResponseWriter, r *http.Request) (string, scenariodomain.ScenarioInput, bool) {
	userID, err := httpapi.UserIDFromContext(r.Context())
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return "", scenariodomain.ScenarioInput{}, false
	}

	var input scenariodomain.ScenarioInput
	if err := httpapi.DecodeJSON(r, &input); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return "", scenariodomain.ScenarioInput{}, false
	}
	return userID, input, true
}

func isValidation(err error) bool {
	var verr *scenariodomain.ValidationError
	return errors.As(err, &verr)
}
