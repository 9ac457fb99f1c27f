package activitydb

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	"github.com/uptrace/bun"
)

// MemoryRepository keeps counters in process memory and ignores the db handle.
type MemoryRepository struct {
	mu       sync.Mutex
	counters map[string]*activitydomain.UserActivityCounters
	counted  map[string]struct{}
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		counters: make(map[string]*activitydomain.UserActivityCounters),
		counted:  make(map[string]struct{}),
		now:      time.Now,
	}
}

func (m *MemoryRepository) row(userID string) *activitydomain.UserActivityCounters {
	c, ok := m.counters[userID]
	if !ok {
		c = &activitydomain.UserActivityCounters{UserID: userID, ActiveDays: []string{}, CreatedAt: m.now().UTC()}
		m.counters[userID] = c
	}
	return c
}

func (m *MemoryRepository) Increment(_ context.Context, _ bun.IDB, userID string, counter activitydomain.Counter, by int) error {
	if !counter.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCounter, counter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row(userID).Increment(counter, by)
	return nil
}

func (m *MemoryRepository) RecordActiveDay(_ context.Context, _ bun.IDB, userID, day string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.row(userID).AddActiveDay(day), nil
}

func (m *MemoryRepository) MarkCounted(_ context.Context, _ bun.IDB, _ string, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counted[key]; ok {
		return false, nil
	}
	m.counted[key] = struct{}{}
	return true, nil
}

func (m *MemoryRepository) GetCounters(_ context.Context, _ bun.IDB, userID string) (*activitydomain.UserActivityCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

func (m *MemoryRepository) ListCounters(_ context.Context, _ bun.IDB) ([]activitydomain.UserActivityCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]activitydomain.UserActivityCounters, 0, len(m.counters))
	for _, c := range m.counters {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
