package leaderboardservice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

var (
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
	testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	pngSig  = []byte("\x89PNG\r\n\x1a\n")
)

func sampleCounters() []activitydomain.UserActivityCounters {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []activitydomain.UserActivityCounters{
		{UserID: "farmer", SimulationsRun: 100, CreatedAt: created},
		{UserID: "contributor", ReportsGenerated: 5, CommunityActions: 2, SimulationsRun: 3, CreatedAt: created.Add(time.Hour)},
	}
}

func newTestService(src CountersSource, repo leaderboarddb.Repository, w leaderboarddomain.ScoreWeights) *LeaderboardService {
	return NewLeaderboardService(src, repo, w, discard, nil, nil, &clock.FakeClock{NowFn: func() time.Time { return testNow }})
}

func TestGetLeaderboard(t *testing.T) {
	src := &FakeCountersSource{ListCountersFunc: func(context.Context) ([]activitydomain.UserActivityCounters, error) {
		return sampleCounters(), nil
	}}

	tests := []struct {
		name      string
		weights   leaderboarddomain.ScoreWeights
		wantFirst string
		wantScore int
	}{
		{name: "default weights", weights: leaderboarddomain.DefaultScoreWeights(), wantFirst: "farmer", wantScore: 500},
		{name: "capped simulations", weights: leaderboarddomain.ScoreWeights{Reports: 15, Community: 10, Simulations: 5, SimulationCap: 10}, wantFirst: "contributor", wantScore: 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(src, &FakeSnapshotRepo{}, tt.weights)
			entries, err := svc.GetLeaderboard(context.Background(), "contributor")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, tt.wantFirst, entries[0].UserID)
			assert.Equal(t, tt.wantScore, entries[0].TotalScore)
			assert.Equal(t, 1, entries[0].Rank)
			assert.Equal(t, 2, entries[1].Rank)
			for _, e := range entries {
				assert.Equal(t, e.UserID == "contributor", e.IsCurrentUser)
			}
		})
	}
}

func TestGetLeaderboardCountersFailure(t *testing.T) {
	boom := errors.New("db down")
	src := &FakeCountersSource{ListCountersFunc: func(context.Context) ([]activitydomain.UserActivityCounters, error) {
		return nil, boom
	}}

	_, err := newTestService(src, &FakeSnapshotRepo{}, leaderboarddomain.DefaultScoreWeights()).GetLeaderboard(context.Background(), "")
	assert.ErrorIs(t, err, boom)
}

func TestTakeSnapshot(t *testing.T) {
	src := &FakeCountersSource{ListCountersFunc: func(context.Context) ([]activitydomain.UserActivityCounters, error) {
		return sampleCounters(), nil
	}}
	repo := &FakeSnapshotRepo{}
	var gotAt time.Time
	var got []leaderboarddomain.LeaderboardEntry
	repo.SaveSnapshotFunc = func(_ context.Context, _ bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error {
		gotAt, got = takenAt, entries
		return nil
	}

	n, err := newTestService(src, repo, leaderboarddomain.DefaultScoreWeights()).TakeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, testNow, gotAt)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.False(t, e.IsCurrentUser)
	}
	assert.Equal(t, []string{"SaveSnapshot"}, repo.trace)
}

func TestRankHistoryChart(t *testing.T) {
	repo := leaderboarddb.NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveSnapshot(ctx, nil, testNow.Add(time.Duration(i)*24*time.Hour), []leaderboarddomain.LeaderboardEntry{
			{Rank: 1 + i%2, UserID: "u1", TotalScore: 10},
		}))
	}
	svc := newTestService(&FakeCountersSource{}, repo, leaderboarddomain.DefaultScoreWeights())

	png, err := svc.RankHistoryChart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSig))

	placeholder, err := svc.RankHistoryChart(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(placeholder, pngSig))
}

func TestGenerateRankHistoryChartFlatHistory(t *testing.T) {
	points := []leaderboarddb.RankPoint{
		{TakenAt: testNow, Rank: 1},
		{TakenAt: testNow.Add(time.Hour), Rank: 1},
	}
	png, err := GenerateRankHistoryChart(points, DefaultPalette)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSig))
}

func TestExportXLSX(t *testing.T) {
	src := &FakeCountersSource{ListCountersFunc: func(context.Context) ([]activitydomain.UserActivityCounters, error) {
		return sampleCounters(), nil
	}}
	svc := newTestService(src, &FakeSnapshotRepo{}, leaderboarddomain.DefaultScoreWeights())

	data, err := svc.ExportXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(leaderboardSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "User", "Score", "Reports", "Community", "Simulations"}, rows[0])
	assert.Equal(t, []string{"1", "farmer", "500", "0", "0", "100"}, rows[1])
	assert.Equal(t, []string{"2", "contributor", "110", "5", "2", "3"}, rows[2])

	weights, err := f.GetRows(weightsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated at", testNow.Format(time.RFC3339)}, weights[0])
}

func TestPruneBefore(t *testing.T) {
	cutoff := testNow.AddDate(0, 0, -30)
	repo := &FakeSnapshotRepo{PruneBeforeFunc: func(_ context.Context, _ bun.IDB, got time.Time) (int64, error) {
		assert.Equal(t, cutoff, got)
		return 4, nil
	}}

	n, err := newTestService(&FakeCountersSource{}, repo, leaderboarddomain.DefaultScoreWeights()).PruneBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
