package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xp-ledger/logger"
	"xp-ledger/models"
	"xp-ledger/store"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, opts ...Option) (*ProgressionService, *testClock) {
	t.Helper()
	clock := &testClock{t: testTime}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc := NewProgressionService(store.NewUnitOfWork(store.NewMemoryStore()), logger.NewNop(), opts...)
	return svc, clock
}

func register(t *testing.T, svc *ProgressionService, userID string) {
	t.Helper()
	_, err := svc.RegisterProfile(context.Background(), userID, userID)
	require.NoError(t, err)
}

func profileOf(t *testing.T, svc *ProgressionService, userID string) ProfileView {
	t.Helper()
	p, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	return *p
}

func snapshotOf(t *testing.T, svc *ProgressionService, userID string) *models.Snapshot {
	t.Helper()
	snap, err := svc.uow.Store().Load(context.Background(), userID)
	require.NoError(t, err)
	return snap
}

func requireConsistent(t *testing.T, svc *ProgressionService, userID string) {
	t.Helper()
	report, err := svc.VerifyUser(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, report.Violations)
}

func day(n int) string {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1).Format(DateLayout)
}

func ptr[T any](v T) *T { return &v }
