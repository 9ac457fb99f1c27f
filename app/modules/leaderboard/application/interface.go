package leaderboardservice

import (
	"context"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
)

// Service defines the contract for leaderboard operations. Every ranking is
// computed on request from the activity counters.
type Service interface {
	// GetLeaderboard ranks every user, flagging currentUserID's row.
	GetLeaderboard(ctx context.Context, currentUserID string) ([]leaderboarddomain.LeaderboardEntry, error)

	// ExportXLSX renders the current leaderboard as a spreadsheet.
	ExportXLSX(ctx context.Context) ([]byte, error)

	// RankHistory returns the user's standing across stored snapshots.
	RankHistory(ctx context.Context, userID string) ([]leaderboarddb.RankPoint, error)

	// RankHistoryChart renders RankHistory as a PNG line chart.
	RankHistoryChart(ctx context.Context, userID string) ([]byte, error)

	// TakeSnapshot stores the current ranking and returns how many rows it holds.
	TakeSnapshot(ctx context.Context) (int, error)

	// PruneBefore drops snapshots taken before cutoff.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CountersSource lists activity counters. The activity service satisfies it.
type CountersSource interface {
	ListCounters(ctx context.Context) ([]activitydomain.UserActivityCounters, error)
}
