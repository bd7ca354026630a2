package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"xp-ledger/models"
)

type fileState struct {
	Users map[string]json.RawMessage `json:"users"`
}

// FileStore keeps every user's snapshot in one JSON document on disk.
// Every call re-reads the document under an advisory file lock, so the server
// and ledgerctl can share a data dir. Writes go to a temp file that is renamed
// over the original.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fs := &FileStore{
		path: filepath.Join(dataDir, "snapshots.json"),
		lock: flock.New(filepath.Join(dataDir, "snapshots.json.lock")),
	}
	// Fail early on a corrupt document.
	if err := fs.withState(false, func(*fileState) error { return nil }); err != nil {
		return nil, err
	}
	return fs, nil
}

// withState runs fn over the current on-disk document. With write set the
// document is locked exclusively and written back when fn returns nil.
func (s *FileStore) withState(write bool, fn func(*fileState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if write {
		err = s.lock.Lock()
	} else {
		err = s.lock.RLock()
	}
	if err != nil {
		return fmt.Errorf("lock snapshots: %w", err)
	}
	defer s.lock.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return s.write(st)
}

func (s *FileStore) read() (*fileState, error) {
	st := &fileState{}
	b, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, st); err != nil {
			return nil, fmt.Errorf("parse snapshots: %w", err)
		}
	}
	if st.Users == nil {
		st.Users = map[string]json.RawMessage{}
	}
	return st, nil
}

func (s *FileStore) write(st *fileState) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshots: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, userID string) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := s.withState(false, func(st *fileState) error {
		raw, ok := st.Users[userID]
		if !ok {
			return ErrSnapshotNotFound
		}
		var err error
		snap, err = decode(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *FileStore) Save(_ context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	return s.withState(true, func(st *fileState) error {
		if _, ok := st.Users[snap.UserID]; !ok {
			return ErrSnapshotNotFound
		}
		st.Users[snap.UserID] = b
		return nil
	})
}

func (s *FileStore) Create(_ context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	return s.withState(true, func(st *fileState) error {
		if _, ok := st.Users[snap.UserID]; ok {
			return ErrSnapshotExists
		}
		st.Users[snap.UserID] = b
		return nil
	})
}

// UpdateTx holds the exclusive file lock across load, fn and save, so a write
// from another process cannot land in between.
func (s *FileStore) UpdateTx(_ context.Context, userID string, fn func(*models.Snapshot) error) error {
	return s.withState(true, func(st *fileState) error {
		raw, ok := st.Users[userID]
		if !ok {
			return ErrSnapshotNotFound
		}
		snap, err := decode(raw)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		snap.Version++
		b, err := encode(snap)
		if err != nil {
			return err
		}
		st.Users[userID] = b
		return nil
	})
}

func (s *FileStore) Delete(_ context.Context, userID string) error {
	return s.withState(true, func(st *fileState) error {
		if _, ok := st.Users[userID]; !ok {
			return ErrSnapshotNotFound
		}
		delete(st.Users, userID)
		return nil
	})
}

func (s *FileStore) UserIDs(_ context.Context) ([]string, error) {
	var ids []string
	err := s.withState(false, func(st *fileState) error {
		ids = make([]string, 0, len(st.Users))
		for id := range st.Users {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}
