package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps events in memory, bounded to the most recent capacity
// entries so a long-running process does not grow without limit.
type MemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

const defaultCapacity = 10000

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.capacity {
		s.events = s.events[len(s.events)-s.capacity:]
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}
