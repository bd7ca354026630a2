package store

import (
	"context"
	"sync"
	"time"

	"xp-ledger/models"
)

// UnitOfWork serializes writers per user and applies a mutation to a loaded
// snapshot. The snapshot is saved only when the mutation returns nil, so a
// failed cascade never leaves a partial write behind.
type UnitOfWork struct {
	store SnapshotStore
	locks *userLocks
	now   func() time.Time
}

func NewUnitOfWork(s SnapshotStore) *UnitOfWork {
	return &UnitOfWork{
		store: s,
		locks: newUserLocks(),
		now:   time.Now,
	}
}

func (u *UnitOfWork) Store() SnapshotStore { return u.store }

// Update runs fn against the user's snapshot and persists the result atomically.
func (u *UnitOfWork) Update(ctx context.Context, userID string, fn func(*models.Snapshot) error) error {
	unlock := u.locks.lock(userID)
	defer unlock()

	if tx, ok := u.store.(transactional); ok {
		return tx.UpdateTx(ctx, userID, func(snap *models.Snapshot) error {
			if err := fn(snap); err != nil {
				return err
			}
			snap.SavedAt = u.now().UTC()
			return nil
		})
	}

	snap, err := u.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	snap.Version++
	snap.SavedAt = u.now().UTC()
	return u.store.Save(ctx, snap)
}

// View loads a private copy of the user's snapshot for reading.
func (u *UnitOfWork) View(ctx context.Context, userID string, fn func(*models.Snapshot) error) error {
	snap, err := u.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	return fn(snap)
}

// Create stores a brand-new snapshot; it fails with ErrSnapshotExists if the user is known.
func (u *UnitOfWork) Create(ctx context.Context, snap *models.Snapshot) error {
	unlock := u.locks.lock(snap.UserID)
	defer unlock()

	snap.Version = 1
	snap.SavedAt = u.now().UTC()
	return u.store.Create(ctx, snap)
}

// userLocks hands out one mutex per user and forgets it once nobody holds or waits on it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: map[string]*userLock{}}
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
