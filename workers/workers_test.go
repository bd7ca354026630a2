package workers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xp-ledger/logger"
	"xp-ledger/models"
	"xp-ledger/services"
	"xp-ledger/store"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) PutObject(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *memObjects) GetObject(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return b, nil
}

func seeded(t *testing.T) (*services.ProgressionService, store.SnapshotStore) {
	t.Helper()
	s := store.NewMemoryStore()
	svc := services.NewProgressionService(store.NewUnitOfWork(s), logger.NewNop())
	ctx := context.Background()
	for _, id := range []string{"alice", "bob"} {
		_, err := svc.RegisterProfile(ctx, id, "")
		require.NoError(t, err)
		_, err = svc.GrantXP(ctx, id, services.GrantInput{Amount: 120, Type: models.XPTypeManual})
		require.NoError(t, err)
	}
	return svc, s
}

func TestSnapshotBackupWorker_RunAndRestore(t *testing.T) {
	_, s := seeded(t)
	objects := &memObjects{}
	w := NewSnapshotBackupWorker(s, objects, logger.NewNop())
	w.now = func() time.Time { return time.Date(2026, 3, 1, 4, 5, 6, 0, time.UTC) }

	res, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snapshots/20260301T040506Z", res.Prefix)
	assert.Equal(t, []string{
		"snapshots/20260301T040506Z/alice.json",
		"snapshots/20260301T040506Z/bob.json",
	}, res.Keys)

	// Wipe alice, then restore the snapshot from the archive.
	require.NoError(t, s.Delete(context.Background(), "alice"))
	snap, err := w.Restore(context.Background(), res.Keys[0])
	require.NoError(t, err)
	assert.Equal(t, 120, snap.Profile.TotalXP)

	live, err := s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 120, live.Profile.TotalXP)
	assert.Len(t, live.XPLogs, 1)
}

func TestConsistencyAuditWorker(t *testing.T) {
	svc, s := seeded(t)
	w := NewConsistencyAuditWorker(svc, logger.NewNop())
	require.NoError(t, w.Run(context.Background()))

	snap, err := s.Load(context.Background(), "bob")
	require.NoError(t, err)
	snap.Calendar = nil
	require.NoError(t, s.Save(context.Background(), snap))

	assert.Error(t, w.Run(context.Background()))
}
