package leaderboarddb

import (
	"context"
	"sync"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// MemoryRepository keeps snapshots in process memory and ignores the db handle.
type MemoryRepository struct {
	mu   sync.Mutex
	rows []Snapshot
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) SaveSnapshot(_ context.Context, _ bun.IDB, takenAt time.Time, entries []leaderboarddomain.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, toRows(takenAt, entries)...)
	return nil
}

// RankHistory relies on snapshots being saved in time order.
func (m *MemoryRepository) RankHistory(_ context.Context, _ bun.IDB, userID string, limit int) ([]RankPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	points := []RankPoint{}
	for _, row := range m.rows {
		if row.UserID == userID {
			points = append(points, RankPoint{TakenAt: row.TakenAt, Rank: row.Rank, TotalScore: row.TotalScore})
		}
	}
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

func (m *MemoryRepository) PruneBefore(_ context.Context, _ bun.IDB, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var pruned int64
	for _, row := range m.rows {
		if row.TakenAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return pruned, nil
}

var _ Repository = (*MemoryRepository)(nil)
