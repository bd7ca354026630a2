package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"xp-ledger/models"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotExists   = errors.New("snapshot already exists")
)

// SnapshotStore persists whole per-user snapshots. Load always returns a private
// copy, so callers may mutate it freely; nothing is visible to others until Save.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
	Create(ctx context.Context, snap *models.Snapshot) error
	Delete(ctx context.Context, userID string) error
	UserIDs(ctx context.Context) ([]string, error)
	Close() error
}

// transactional is implemented by backends that can run a read-modify-write
// inside their own transaction (row lock, commit/rollback).
type transactional interface {
	UpdateTx(ctx context.Context, userID string, fn func(*models.Snapshot) error) error
}

func encode(snap *models.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", snap.UserID, err)
	}
	return b, nil
}

func decode(b []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
