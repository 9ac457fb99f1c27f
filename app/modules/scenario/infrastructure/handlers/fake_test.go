package scenariohandlers

import (
	"context"
	"time"

	scenarioservice "github.com/Black-And-White-Club/envsim/app/modules/scenario/application"
	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
)

// ------------------------
// Fake Scenario Service
// ------------------------

type FakeScenarioService struct {
	trace []string

	RegisterFunc         func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error)
	CheckEligibilityFunc func(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.EligibilityResult, error)
	GetHistoryFunc       func(ctx context.Context, userID string, since time.Time) ([]scenariodomain.ScenarioRecord, error)
	ClearHistoryFunc     func(ctx context.Context, userID string) error
}

func NewFakeScenarioService() *FakeScenarioService {
	return &FakeScenarioService{
		trace: []string{},
	}
}

func (f *FakeScenarioService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeScenarioService) Register(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.RegistrationResult, error) {
	f.record("Register")
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, userID, input)
	}
	return scenarioservice.RegistrationResult{}, nil
}

func (f *FakeScenarioService) CheckEligibility(ctx context.Context, userID string, input scenariodomain.ScenarioInput) (scenarioservice.EligibilityResult, error) {
	f.record("CheckEligibility")
	if f.CheckEligibilityFunc != nil {
		return f.CheckEligibilityFunc(ctx, userID, input)
	}
	return scenarioservice.EligibilityResult{}, nil
}

func (f *FakeScenarioService) GetHistory(ctx context.Context, userID string, since time.Time) ([]scenariodomain.ScenarioRecord, error) {
	f.record("GetHistory")
	if f.GetHistoryFunc != nil {
		return f.GetHistoryFunc(ctx, userID, since)
	}
	return nil, nil
}

func (f *FakeScenarioService) ClearHistory(ctx context.Context, userID string) error {
	f.record("ClearHistory")
	if f.ClearHistoryFunc != nil {
		return f.ClearHistoryFunc(ctx, userID)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeScenarioService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scenarioservice.Service = (*FakeScenarioService)(nil)
