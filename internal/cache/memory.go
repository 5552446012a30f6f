package cache

import (
	"context"
	"sync"
	"time"

	models "vantage/internal/domain/models/orgtree"
)

type memoryEntry struct {
	company   *models.Company
	expiresAt time.Time
}

// MemorySnapshotCache is the in-process fallback when no Redis is configured.
// Entries are shared pointers; callers must treat them as read-only.
type MemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns (nil, nil) on a miss or an expired entry
func (c *MemorySnapshotCache) Get(ctx context.Context, companyID int64) (*models.Company, error) {
	c.mu.RLock()
	entry, ok := c.entries[companyID]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, companyID)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.company, nil
}

func (c *MemorySnapshotCache) Set(ctx context.Context, company *models.Company) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[company.ID] = memoryEntry{
		company:   company,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemorySnapshotCache) Invalidate(ctx context.Context, companyID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, companyID)
	return nil
}
