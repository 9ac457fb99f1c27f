package scenarioservice

import (
	"context"
	"sync"

	scenariodb "github.com/Black-And-White-Club/envsim/app/modules/scenario/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scenario Repo
// ------------------------

type FakeScenarioRepo struct {
	mu    sync.Mutex
	trace []string

	LoadHistoryFunc  func(ctx context.Context, db bun.IDB, userID string) (*scenariodb.History, error)
	SaveHistoryFunc  func(ctx context.Context, db bun.IDB, history *scenariodb.History, expectedVersion int64) error
	ClearHistoryFunc func(ctx context.Context, db bun.IDB, userID string) error
}

func NewFakeScenarioRepo() *FakeScenarioRepo {
	return &FakeScenarioRepo{
		trace: []string{},
	}
}

func (f *FakeScenarioRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeScenarioRepo) LoadHistory(ctx context.Context, db bun.IDB, userID string) (*scenariodb.History, error) {
	f.record("LoadHistory")
	if f.LoadHistoryFunc != nil {
		return f.LoadHistoryFunc(ctx, db, userID)
	}
	return nil, scenariodb.ErrNotFound
}

func (f *FakeScenarioRepo) SaveHistory(ctx context.Context, db bun.IDB, history *scenariodb.History, expectedVersion int64) error {
	f.record("SaveHistory")
	if f.SaveHistoryFunc != nil {
		return f.SaveHistoryFunc(ctx, db, history, expectedVersion)
	}
	return nil
}

func (f *FakeScenarioRepo) ClearHistory(ctx context.Context, db bun.IDB, userID string) error {
	f.record("ClearHistory")
	if f.ClearHistoryFunc != nil {
		return f.ClearHistoryFunc(ctx, db, userID)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeScenarioRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scenariodb.Repository = (*FakeScenarioRepo)(nil)
