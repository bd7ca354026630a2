package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xp-ledger/models"
)

func openTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres snapshot store tests")
	}
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStore_UpdateTxBumpsVersion(t *testing.T) {
	s := openTestGormStore(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(ctx, userID) })

	require.NoError(t, s.Create(ctx, models.NewSnapshot(userID, time.Now())))

	uow := NewUnitOfWork(s)
	require.NoError(t, uow.Update(ctx, userID, func(snap *models.Snapshot) error {
		snap.Profile.TotalXP = 120
		return nil
	}))

	snap, err := s.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 120, snap.Profile.TotalXP)
	assert.Equal(t, int64(1), snap.Version)
}
