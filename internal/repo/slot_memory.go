package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/qalakaar/gigboard/internal/domain"
)

// MemorySlot is an in-process Slot. Values are copied on the way in and out
// so callers cannot mutate stored bytes.
// It backs the "memory" storage backend and doubles as a test fake.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (s *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("repo.MemorySlot.Get: %w", domain.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (s *MemorySlot) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}
