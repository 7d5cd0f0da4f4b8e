package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps reservations in a mutex-guarded map. It favors clarity
// over performance and backs unit tests and demo mode.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Reserve inserts an entry for deviceID if none exists. The check and insert
// happen under one lock acquisition, so concurrent callers for the same
// device see exactly one success.
func (s *MemoryStore) Reserve(ctx context.Context, deviceID, accountID string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[deviceID]; ok {
		return Entry{}, ErrAlreadyExists
	}
	entry := Entry{
		DeviceID:  deviceID,
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}
	s.entries[deviceID] = entry
	return entry, nil
}

func (s *MemoryStore) Exists(ctx context.Context, deviceID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[deviceID]
	return ok, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
