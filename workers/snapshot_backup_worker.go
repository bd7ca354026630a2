package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"xp-ledger/logger"
	"xp-ledger/models"
	"xp-ledger/store"
)

// ObjectStore is the slice of the R2 client the backup worker needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// SnapshotBackupWorker copies every user snapshot to object storage. Each run
// writes under its own timestamped prefix so older runs are never overwritten.
type SnapshotBackupWorker struct {
	store   store.SnapshotStore
	objects ObjectStore
	log     *logger.Logger
	prefix  string
	now     func() time.Time
}

func NewSnapshotBackupWorker(s store.SnapshotStore, objects ObjectStore, log *logger.Logger) *SnapshotBackupWorker {
	return &SnapshotBackupWorker{
		store:   s,
		objects: objects,
		log:     log,
		prefix:  "snapshots",
		now:     time.Now,
	}
}

// BackupResult lists where a run put its objects.
type BackupResult struct {
	Prefix string   `json:"prefix"`
	Keys   []string `json:"keys"`
}

// ObjectKey is the key a user's snapshot gets inside a run prefix.
func ObjectKey(runPrefix, userID string) string {
	return path.Join(runPrefix, userID+".json")
}

// Run backs up every user. It stops at the first failure so a partial run is
// reported instead of silently skipped.
func (w *SnapshotBackupWorker) Run(ctx context.Context) (*BackupResult, error) {
	ids, err := w.store.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	res := &BackupResult{Prefix: path.Join(w.prefix, w.now().UTC().Format("20060102T150405Z"))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snap, err := w.store.Load(ctx, id)
		if err != nil {
			return res, fmt.Errorf("loading %s: %w", id, err)
		}
		body, err := json.Marshal(snap)
		if err != nil {
			return res, fmt.Errorf("encoding %s: %w", id, err)
		}
		key := ObjectKey(res.Prefix, id)
		if err := w.objects.PutObject(ctx, key, body, "application/json"); err != nil {
			return res, err
		}
		res.Keys = append(res.Keys, key)
	}
	w.log.Info("snapshot backup finished", "prefix", res.Prefix, "users", len(res.Keys))
	return res, nil
}

// Restore reads one archived snapshot and writes it back over the user's live snapshot,
// creating the user if needed.
func (w *SnapshotBackupWorker) Restore(ctx context.Context, key string) (*models.Snapshot, error) {
	body, err := w.objects.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if snap.UserID == "" {
		return nil, fmt.Errorf("%s holds no user id", key)
	}

	err = w.store.Create(ctx, &snap)
	if errors.Is(err, store.ErrSnapshotExists) {
		err = w.store.Save(ctx, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("restoring %s: %w", snap.UserID, err)
	}
	w.log.Info("snapshot restored", "user_id", snap.UserID, "key", key, "version", snap.Version)
	return &snap, nil
}

// Job adapts the worker to the maintenance scheduler.
func (w *SnapshotBackupWorker) Job() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := w.Run(ctx)
		return err
	}
}
