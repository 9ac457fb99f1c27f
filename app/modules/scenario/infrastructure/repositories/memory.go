package scenariodb

import (
	"context"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// MemoryRepository keeps histories in process memory. It honours the same
// version semantics as the Postgres implementation and ignores the db handle.
type MemoryRepository struct {
	mu        sync.Mutex
	histories map[string]*History
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{histories: make(map[string]*History)}
}

func (m *MemoryRepository) LoadHistory(_ context.Context, _ bun.IDB, userID string) (*History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return h.Clone(), nil
}

func (m *MemoryRepository) SaveHistory(_ context.Context, _ bun.IDB, history *History, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	if stored, ok := m.histories[history.UserID]; ok {
		current = stored.Version
	}
	if current != expectedVersion {
		return ErrVersionConflict
	}

	now := time.Now().UTC()
	history.Version = expectedVersion + 1
	history.UpdatedAt = now
	if expectedVersion == 0 {
		history.CreatedAt = now
	}
	m.histories[history.UserID] = history.Clone()
	return nil
}

func (m *MemoryRepository) ClearHistory(_ context.Context, _ bun.IDB, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.histories, userID)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
