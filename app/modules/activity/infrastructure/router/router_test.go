package activityrouter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	activityservice "github.com/Black-And-White-Club/envsim/app/modules/activity/application"
	activityhandlers "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/handlers"
	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	activityevents "github.com/Black-And-White-Club/envsim/events/activity"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/Black-And-White-Club/envsim/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureConsumesActivityTopics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewInMemoryEventBus(logger)
	t.Cleanup(func() { _ = bus.(io.Closer).Close() })

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	svc := activityservice.NewActivityService(activitydb.NewMemoryRepository(), logger, nil, nil, nil, time.UTC)
	clk := clock.NewAnchorClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ar := NewActivityRouter(logger, router, bus, bus, nil, nil)
	require.NoError(t, ar.Configure(context.Background(), activityhandlers.NewActivityHandlers(svc, logger, nil, clk)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	publish := func(topic string, payload any) {
		msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{Topic: topic, Payload: payload}, "corr")
		require.NoError(t, err)
		require.NoError(t, bus.Publish("", msg))
	}
	publish(scenarioevents.ScenarioRegisteredV1, scenarioevents.ScenarioRegisteredPayloadV1{
		UserID: "u1", RewardEligible: true, RegisteredAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
	})
	publish(activityevents.ActivityReportGeneratedV1, activityevents.ActivityReportGeneratedPayloadV1{UserID: "u1"})

	assert.Eventually(t, func() bool {
		c, err := svc.GetCounters(context.Background(), "u1")
		return err == nil && c.SimulationsRun == 1 && c.ReportsGenerated == 1
	}, 5*time.Second, 20*time.Millisecond)

	c, err := svc.GetCounters(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-09", "2026-03-10"}, c.ActiveDays)
}

type recordingHandlers struct {
	hits []string
}

func (h *recordingHandlers) HandleReportGenerated(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "reports")
}

func (h *recordingHandlers) HandleCommunityAction(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "community")
}

func (h *recordingHandlers) HandleGetMyCounters(http.ResponseWriter, *http.Request) {
	h.hits = append(h.hits, "me")
}

func TestMountHTTP(t *testing.T) {
	h := &recordingHandlers{}
	r := chi.NewRouter()
	MountHTTP(r, h)

	requests := []struct{ method, path string }{
		{http.MethodPost, "/activity/reports"},
		{http.MethodPost, "/activity/community"},
		{http.MethodGet, "/activity/me"},
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, req.path)
	}
	assert.Equal(t, []string{"reports", "community", "me"}, h.hits)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activity/reports", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
