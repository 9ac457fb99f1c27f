package activityservice

import (
	"context"
	"sync"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	activitydb "github.com/Black-And-White-Club/envsim/app/modules/activity/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Activity Repo
// ------------------------

type FakeActivityRepo struct {
	mu    sync.Mutex
	trace []string

	IncrementFunc       func(ctx context.Context, db bun.IDB, userID string, counter activitydomain.Counter, by int) error
	RecordActiveDayFunc func(ctx context.Context, db bun.IDB, userID, day string) (bool, error)
	MarkCountedFunc     func(ctx context.Context, db bun.IDB, userID, key string) (bool, error)
	GetCountersFunc     func(ctx context.Context, db bun.IDB, userID string) (*activitydomain.UserActivityCounters, error)
	ListCountersFunc    func(ctx context.Context, db bun.IDB) ([]activitydomain.UserActivityCounters, error)
}

func NewFakeActivityRepo() *FakeActivityRepo {
	return &FakeActivityRepo{trace: []string{}}
}

func (f *FakeActivityRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeActivityRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeActivityRepo) Increment(ctx context.Context, db bun.IDB, userID string, counter activitydomain.Counter, by int) error {
	f.record("Increment:" + string(counter))
	if f.IncrementFunc != nil {
		return f.IncrementFunc(ctx, db, userID, counter, by)
	}
	return nil
}

func (f *FakeActivityRepo) RecordActiveDay(ctx context.Context, db bun.IDB, userID, day string) (bool, error) {
	f.record("RecordActiveDay:" + day)
	if f.RecordActiveDayFunc != nil {
		return f.RecordActiveDayFunc(ctx, db, userID, day)
	}
	return true, nil
}

func (f *FakeActivityRepo) MarkCounted(ctx context.Context, db bun.IDB, userID, key string) (bool, error) {
	f.record("MarkCounted:" + key)
	if f.MarkCountedFunc != nil {
		return f.MarkCountedFunc(ctx, db, userID, key)
	}
	return true, nil
}

func (f *FakeActivityRepo) GetCounters(ctx context.Context, db bun.IDB, userID string) (*activitydomain.UserActivityCounters, error) {
	f.record("GetCounters")
	if f.GetCountersFunc != nil {
		return f.GetCountersFunc(ctx, db, userID)
	}
	return nil, activitydb.ErrNotFound
}

func (f *FakeActivityRepo) ListCounters(ctx context.Context, db bun.IDB) ([]activitydomain.UserActivityCounters, error) {
	f.record("ListCounters")
	if f.ListCountersFunc != nil {
		return f.ListCountersFunc(ctx, db)
	}
	return nil, nil
}

var _ activitydb.Repository = (*FakeActivityRepo)(nil)
