package repository

import (
	"context"
	"sync"
	"time"

	"palco/internal/models"
)

// MemoryFeeCache keeps the fee schedule in process memory with a TTL.
// Used standalone in tests and as the failover target when Redis is down.
type MemoryFeeCache struct {
	loader ScheduleLoader
	ttl    time.Duration

	mu       sync.RWMutex
	cached   *models.FeeSchedule
	expireAt time.Time
}

func NewMemoryFeeCache(loader ScheduleLoader, ttl time.Duration) *MemoryFeeCache {
	return &MemoryFeeCache{
		loader: loader,
		ttl:    ttl,
	}
}

func (m *MemoryFeeCache) Schedule(ctx context.Context) (*models.FeeSchedule, error) {
	m.mu.RLock()
	if m.cached != nil && time.Now().Before(m.expireAt) {
		schedule := *m.cached
		m.mu.RUnlock()
		return &schedule, nil
	}
	m.mu.RUnlock()

	schedule, err := m.loader.LoadFeeSchedule(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	copied := *schedule
	m.cached = &copied
	m.expireAt = time.Now().Add(m.ttl)
	m.mu.Unlock()

	return schedule, nil
}

func (m *MemoryFeeCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.cached = nil
	m.expireAt = time.Time{}
	m.mu.Unlock()
	return nil
}
