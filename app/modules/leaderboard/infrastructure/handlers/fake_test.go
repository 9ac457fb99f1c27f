package leaderboardhandlers

import (
	"context"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
)

// ------------------------
// Fake Leaderboard Service
// ------------------------

type FakeLeaderboardService struct {
	trace []string

	GetLeaderboardFunc   func(ctx context.Context, currentUserID string) ([]leaderboarddomain.LeaderboardEntry, error)
	ExportXLSXFunc       func(ctx context.Context) ([]byte, error)
	RankHistoryFunc      func(ctx context.Context, userID string) ([]leaderboarddb.RankPoint, error)
	RankHistoryChartFunc func(ctx context.Context, userID string) ([]byte, error)
	TakeSnapshotFunc     func(ctx context.Context) (int, error)
	PruneBeforeFunc      func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *FakeLeaderboardService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardService) GetLeaderboard(ctx context.Context, currentUserID string) ([]leaderboarddomain.LeaderboardEntry, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, currentUserID)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) ExportXLSX(ctx context.Context) ([]byte, error) {
	f.record("ExportXLSX")
	if f.ExportXLSXFunc != nil {
		return f.ExportXLSXFunc(ctx)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) RankHistory(ctx context.Context, userID string) ([]leaderboarddb.RankPoint, error) {
	f.record("RankHistory")
	if f.RankHistoryFunc != nil {
		return f.RankHistoryFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) RankHistoryChart(ctx context.Context, userID string) ([]byte, error) {
	f.record("RankHistoryChart")
	if f.RankHistoryChartFunc != nil {
		return f.RankHistoryChartFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) TakeSnapshot(ctx context.Context) (int, error) {
	f.record("TakeSnapshot")
	if f.TakeSnapshotFunc != nil {
		return f.TakeSnapshotFunc(ctx)
	}
	return 0, nil
}

func (f *FakeLeaderboardService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.record("PruneBefore")
	if f.PruneBeforeFunc != nil {
		return f.PruneBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

var _ leaderboardservice.Service = (*FakeLeaderboardService)(nil)
