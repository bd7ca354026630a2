package store

import (
	"context"
	"sort"
	"sync"

	"xp-ledger/models"
)

// MemoryStore keeps encoded snapshots in a map. Used by tests and single-node dev runs.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (*models.Snapshot, error) {
	s.mu.RLock()
	b, ok := s.snaps[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return decode(b)
}

func (s *MemoryStore) Save(_ context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[snap.UserID]; !ok {
		return ErrSnapshotNotFound
	}
	s.snaps[snap.UserID] = b
	return nil
}

func (s *MemoryStore) Create(_ context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[snap.UserID]; ok {
		return ErrSnapshotExists
	}
	s.snaps[snap.UserID] = b
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[userID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(s.snaps, userID)
	return nil
}

func (s *MemoryStore) UserIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
