package storage

import (
	"context"
	"sync"

	"github.com/zenithmode/zenith/internal/session"
)

// MemoryStorage keeps the snapshot in RAM. State disappears with the process;
// useful for development and tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	snap *session.Snapshot
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(ctx context.Context) (*session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

func (s *MemoryStorage) Save(ctx context.Context, snap *session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
