package scenariorouter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariohandlers "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/handlers"
	scenariodb "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureRegistersOverTheBus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewInMemoryEventBus(logger)
	t.Cleanup(func() { _ = bus.(io.Closer).Close() })

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	clk := clock.NewAnchorClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := scenarioservice.NewScenarioService(scenariodb.NewMemoryRepository(), logger, nil, nil, nil, clk)
	sr := NewScenarioRouter(logger, router, bus, bus, nil, nil)
	require.NoError(t, sr.Configure(context.Background(), scenariohandlers.NewScenarioHandlers(svc, logger, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registered, err := bus.Subscribe(ctx, scenarioevents.ScenarioRegisteredV1)
	require.NoError(t, err)

	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{
		Topic: scenarioevents.ScenarioRegistrationRequestedV1,
		Payload: scenarioevents.ScenarioRegistrationRequestedPayloadV1{
			UserID: "u1", Zone: "Harbor", Trees: 30, Traffic: 10, Waste: 5, Cooling: 0,
		},
	}, "corr-7")
	require.NoError(t, err)
	require.NoError(t, bus.Publish("", msg))

	select {
	case got := <-registered:
		got.Ack()
		var out scenarioevents.ScenarioRegisteredPayloadV1
		require.NoError(t, json.Unmarshal(got.Payload, &out))
		assert.Equal(t, "u1", out.UserID)
		assert.True(t, out.RewardEligible)
		assert.Equal(t, 2, out.RemainingToday)
		assert.Equal(t, "corr-7", middleware.MessageCorrelationID(got))
	case <-ctx.Done():
		t.Fatal("no registration outcome published")
	}
}

type recordingHandlers struct {
	hits []string
}

func (h *recordingHandlers) HandleRegister(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "register")
}

func (h *recordingHandlers) HandleCheckEligibility(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "eligibility")
}

func (h *recordingHandlers) HandleGetHistory(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "history")
}

func (h *recordingHandlers) HandleClearHistory(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "clear")
}

func TestMountHTTP(t *testing.T) {
	h := &recordingHandlers{}
	r := chi.NewRouter()
	MountHTTP(r, h)

	requests := []struct{ method, path string }{
		{http.MethodPost, "/scenarios/register"},
		{http.MethodPost, "/scenarios/eligibility"},
		{http.MethodGet, "/scenarios/history"},
		{http.MethodDelete, "/scenarios/history"},
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, req.method+" "+req.path)
	}
	assert.Equal(t, []string{"register", "eligibility", "history", "clear"}, h.hits)
}
