package service

import (
	"sync"

	"github.com/google/uuid"
)

// txLocker serializes operations per transaction id: a transaction is a
// single logical writer at a time, which is what guarantees the change
// record ordering invariant. Locks are reference-counted and dropped when
// the last holder releases, so the map does not grow with transaction
// churn. Operations on different transactions proceed in parallel.
type txLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*txLock
}

type txLock struct {
	mu   sync.Mutex
	refs int
}

func newTxLocker() *txLocker {
	return &txLocker{locks: map[uuid.UUID]*txLock{}}
}

// acquire blocks until the caller holds the lock for id. The returned
// function releases it.
func (l *txLocker) acquire(id uuid.UUID) (release func()) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &txLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
