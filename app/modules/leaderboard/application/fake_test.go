package leaderboardservice

import (
	"context"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Counters Source
// ------------------------

type FakeCountersSource struct {
	trace []string

	ListCountersFunc func(ctx context.Context) ([]activitydomain.UserActivityCounters, error)
}

func (f *FakeCountersSource) ListCounters(ctx context.Context) ([]activitydomain.UserActivityCounters, error) {
	f.trace = append(f.trace, "ListCounters")
	if f.ListCountersFunc != nil {
		return f.ListCountersFunc(ctx)
	}
	return nil, nil
}

// ------------------------
// Fake Snapshot Repo
// ------------------------

type FakeSnapshotRepo struct {
	trace []string

	SaveSnapshotFunc func(ctx context.Context, db bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error
	RankHistoryFunc  func(ctx context.Context, db bun.IDB, userID string, limit int) ([]leaderboarddb.RankPoint, error)
	PruneBeforeFunc  func(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error)
}

func (f *FakeSnapshotRepo) SaveSnapshot(ctx context.Context, db bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error {
	f.trace = append(f.trace, "SaveSnapshot")
	if f.SaveSnapshotFunc != nil {
		return f.SaveSnapshotFunc(ctx, db, takenAt, entries)
	}
	return nil
}

func (f *FakeSnapshotRepo) RankHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]leaderboarddb.RankPoint, error) {
	f.trace = append(f.trace, "RankHistory")
	if f.RankHistoryFunc != nil {
		return f.RankHistoryFunc(ctx, db, userID, limit)
	}
	return nil, nil
}

func (f *FakeSnapshotRepo) PruneBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error) {
	f.trace = append(f.trace, "PruneBefore")
	if f.PruneBeforeFunc != nil {
		return f.PruneBeforeFunc(ctx, db, cutoff)
	}
	return 0, nil
}

var (
	_ CountersSource           = (*FakeCountersSource)(nil)
	_ leaderboarddb.Repository = (*FakeSnapshotRepo)(nil)
)
