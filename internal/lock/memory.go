// internal/lock/memory.go
package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	decisionID string
	expiresAt  time.Time
}

// MemoryLock is the in-process Store. Expired entries are treated as absent
// and reaped lazily on access.
type MemoryLock struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryLock)(nil)

func NewMemoryLock(ttl time.Duration) *MemoryLock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryLock{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryLock) Get(_ context.Context, requisitionID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[requisitionID]
	if !ok {
		return "", false, nil
	}
	if l.now().After(e.expiresAt) {
		delete(l.entries, requisitionID)
		return "", false, nil
	}
	return e.decisionID, true, nil
}

func (l *MemoryLock) TryAcquire(_ context.Context, requisitionID, decisionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[requisitionID]; ok && l.now().Before(e.expiresAt) {
		return false, nil
	}
	l.entries[requisitionID] = memoryEntry{
		decisionID: decisionID,
		expiresAt:  l.now().Add(l.ttl),
	}
	return true, nil
}

func (l *MemoryLock) Release(_ context.Context, requisitionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, requisitionID)
	return nil
}
