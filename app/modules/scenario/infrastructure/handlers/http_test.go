package scenariohandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/app/shared/httpapi"
	scenarioevents "github.com/Black-And-White-Club/envsim/events/scenario"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var httpNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func newHTTP(svc scenarioservice.Service) *ScenarioHTTPHandlers {
	return NewScenarioHTTPHandlers(svc, nil, slog.Default(), &clock.FakeClock{NowFn: func() time.Time { return httpNow }})
}

type capturePublisher struct {
	messages []*message.Message
	err      error
}

func (c *capturePublisher) Publish(_ string, msgs ...*message.Message) error {
	c.messages = append(c.messages, msgs...)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(httpapi.WithUserID(req.Context(), userID))
}

func TestHandleRegister(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupService func(*FakeScenarioService)
		wantCode     int
		wantContains string
	}{
		{
			name: "credited",
			body: `{"zone":"Harbor","trees":10,"traffic":20,"waste":30,"cooling":40}`,
			setupService: func(f *FakeScenarioService) {
				f.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
					return scenarioservice.RegistrationResult{RewardEligible: true, RemainingToday: 2, Message: scenariodomain.MessageNewScenario}, nil
				}
			},
			wantCode:     http.StatusOK,
			wantContains: `"reward_eligible":true`,
		},
		{
			name:         "malformed body",
			body:         `{"zone":`,
			setupService: func(f *FakeScenarioService) {},
			wantCode:     http.StatusBadRequest,
			wantContains: "invalid request body",
		},
		{
			name: "validation error",
			body: `{"zone":"","trees":10}`,
			setupService: func(f *FakeScenarioService) {
				f.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
					return scenarioservice.FailedRegistration(), &scenariodomain.ValidationError{Field: "zone", Reason: "is required"}
				}
			},
			wantCode:     http.StatusBadRequest,
			wantContains: "zone is required",
		},
		{
			name: "storage failure returns safe default",
			body: `{"zone":"Harbor","trees":10}`,
			setupService: func(f *FakeScenarioService) {
				f.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
					return scenarioservice.FailedRegistration(), errors.New("db down")
				}
			},
			wantCode:     http.StatusInternalServerError,
			wantContains: `"reward_eligible":false`,
		},
		{
			name: "concurrent registration",
			body: `{"zone":"Harbor","trees":10}`,
			setupService: func(f *FakeScenarioService) {
				f.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
					return scenarioservice.FailedRegistration(), scenarioservice.ErrConcurrentRegistration
				}
			},
			wantCode:     http.StatusConflict,
			wantContains: scenariodomain.MessageTryAgain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeScenarioService()
			tt.setupService(fakeService)

			req := authed(httptest.NewRequest(http.MethodPost, "/api/scenarios/register", strings.NewReader(tt.body)), "user-1")
			rec := httptest.NewRecorder()
			newHTTP(fakeService).HandleRegister(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
		})
	}
}

func TestHandleRegisterRequiresIdentity(t *testing.T) {
	fakeService := NewFakeScenarioService()
	req := httptest.NewRequest(http.MethodPost, "/api/scenarios/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	newHTTP(fakeService).HandleRegister(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, fakeService.Trace())
}

func TestHandleCheckEligibility(t *testing.T) {
	fakeService := NewFakeScenarioService()
	fakeService.CheckEligibilityFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.EligibilityResult, error) {
		return scenarioservice.EligibilityResult{CreditEligible: false, IsDuplicate: true, RemainingToday: 1, Fingerprint: "scn_1"}, nil
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/scenarios/eligibility", strings.NewReader(`{"zone":"Harbor"}`)), "user-1")
	rec := httptest.NewRecorder()
	newHTTP(fakeService).HandleCheckEligibility(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"credit_eligible":false,"is_duplicate":true,"remaining_today":1,"fingerprint":"scn_1","message":""}`, rec.Body.String())
}

func TestHandleGetHistory(t *testing.T) {
	var gotSince time.Time
	fakeService := NewFakeScenarioService()
	fakeService.GetHistoryFunc = func(ctx context.Context, userID string, since time.Time) ([]scenariodomain.ScenarioRecord, error) {
		gotSince = since
		return nil, nil
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/scenarios/history?since=2026-10-01", nil), "user-1")
	rec := httptest.NewRecorder()
	newHTTP(fakeService).HandleGetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[]}`, rec.Body.String())
	assert.True(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC).Equal(gotSince))

	req = authed(httptest.NewRequest(http.MethodGet, "/api/scenarios/history?since=blorp+florp", nil), "user-1")
	rec = httptest.NewRecorder()
	newHTTP(fakeService).HandleGetHistory(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleClearHistory(t *testing.T) {
	fakeService := NewFakeScenarioService()
	req := authed(httptest.NewRequest(http.MethodDelete, "/api/scenarios/history", nil), "user-1")
	rec := httptest.NewRecorder()

	newHTTP(fakeService).HandleClearHistory(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"ClearHistory"}, fakeService.Trace())
}

func TestHandleRegisterPublishesOutcome(t *testing.T) {
	fakeService := NewFakeScenarioService()
	fakeService.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
		return scenarioservice.RegistrationResult{RewardEligible: true, RemainingToday: 2, Fingerprint: "scn_9"}, nil
	}
	pub := &capturePublisher{}
	h := NewScenarioHTTPHandlers(fakeService, pub, slog.Default(), clock.NewLocalClock(time.UTC))

	req := authed(httptest.NewRequest(http.MethodPost, "/api/scenarios/register", strings.NewReader(`{"zone":"Harbor","trees":1}`)), "user-1")
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, scenarioevents.ScenarioRegisteredV1, pub.messages[0].Metadata.Get(eventbus.MetadataTopic))
	assert.Contains(t, string(pub.messages[0].Payload), `"reward_eligible":true`)

	// Publish failures do not change the response.
	pub.err = errors.New("bus down")
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, authed(httptest.NewRequest(http.MethodPost, "/api/scenarios/register", strings.NewReader(`{"zone":"Harbor","trees":1}`)), "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRegisterIdempotencyKey(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header string
		want   string
	}{
		{"header", `{"zone":"Harbor","trees":1}`, "key-1", "key-1"},
		{"body wins over header", `{"zone":"Harbor","trees":1,"request_id":"body-1"}`, "key-1", "body-1"},
		{"none", `{"zone":"Harbor","trees":1}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			fakeService := NewFakeScenarioService()
			fakeService.RegisterFunc = func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
				got = input.RequestID
				return scenarioservice.RegistrationResult{}, nil
			}

			req := authed(httptest.NewRequest(http.MethodPost, "/api/scenarios/register", strings.NewReader(tt.body)), "user-1")
			if tt.header != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			newHTTP(fakeService).HandleRegister(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}
