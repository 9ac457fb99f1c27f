package activityhandlers

import (
	"context"
	"time"

	activityservice "github.com/Black-And-White-Club/envsim/app/modules/activity/application"
	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
)

// ------------------------
// Fake Activity Service
// ------------------------

type FakeActivityService struct {
	trace []string

	IncrementSimulationsFunc func(ctx context.Context, userID string) error
	IncrementReportsFunc     func(ctx context.Context, userID string) error
	IncrementCommunityFunc   func(ctx context.Context, userID string) error
	RecordActiveDayFunc      func(ctx context.Context, userID string, at time.Time) error
	RecordScenarioRunFunc    func(ctx context.Context, userID, recordID string, rewardEligible bool, at time.Time) error
	RecordReportFunc         func(ctx context.Context, userID, reportID string, at time.Time) error
	RecordCommunityFunc      func(ctx context.Context, userID string, at time.Time) error
	GetCountersFunc          func(ctx context.Context, userID string) (activitydomain.UserActivityCounters, error)
	ListCountersFunc         func(ctx context.Context) ([]activitydomain.UserActivityCounters, error)
}

func NewFakeActivityService() *FakeActivityService {
	return &FakeActivityService{trace: []string{}}
}

func (f *FakeActivityService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeActivityService) IncrementSimulations(ctx context.Context, userID string) error {
	f.record("IncrementSimulations")
	if f.IncrementSimulationsFunc != nil {
		return f.IncrementSimulationsFunc(ctx, userID)
	}
	return nil
}

func (f *FakeActivityService) IncrementReports(ctx context.Context, userID string) error {
	f.record("IncrementReports")
	if f.IncrementReportsFunc != nil {
		return f.IncrementReportsFunc(ctx, userID)
	}
	return nil
}

func (f *FakeActivityService) IncrementCommunity(ctx context.Context, userID string) error {
	f.record("IncrementCommunity")
	if f.IncrementCommunityFunc != nil {
		return f.IncrementCommunityFunc(ctx, userID)
	}
	return nil
}

func (f *FakeActivityService) RecordActiveDay(ctx context.Context, userID string, at time.Time) error {
	f.record("RecordActiveDay")
	if f.RecordActiveDayFunc != nil {
		return f.RecordActiveDayFunc(ctx, userID, at)
	}
	return nil
}

func (f *FakeActivityService) RecordScenarioRun(ctx context.Context, userID, recordID string, rewardEligible bool, at time.Time) error {
	f.record("RecordScenarioRun")
	if f.RecordScenarioRunFunc != nil {
		return f.RecordScenarioRunFunc(ctx, userID, recordID, rewardEligible, at)
	}
	return nil
}

func (f *FakeActivityService) RecordReport(ctx context.Context, userID, reportID string, at time.Time) error {
	f.record("RecordReport")
	if f.RecordReportFunc != nil {
		return f.RecordReportFunc(ctx, userID, reportID, at)
	}
	return nil
}

func (f *FakeActivityService) RecordCommunityAction(ctx context.Context, userID string, at time.Time) error {
	f.record("RecordCommunityAction")
	if f.RecordCommunityFunc != nil {
		return f.RecordCommunityFunc(ctx, userID, at)
	}
	return nil
}

func (f *FakeActivityService) GetCounters(ctx context.Context, userID string) (activitydomain.UserActivityCounters, error) {
	f.record("GetCounters")
	if f.GetCountersFunc != nil {
		return f.GetCountersFunc(ctx, userID)
	}
	return activitydomain.UserActivityCounters{UserID: userID, ActiveDays: []string{}}, nil
}

func (f *FakeActivityService) ListCounters(ctx context.Context) ([]activitydomain.UserActivityCounters, error) {
	f.record("ListCounters")
	if f.ListCountersFunc != nil {
		return f.ListCountersFunc(ctx)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeActivityService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ activityservice.Service = (*FakeActivityService)(nil)
