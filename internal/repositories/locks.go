package repositories

import "sync"

// userLocks serializes read-modify-write cycles per user for backends whose
// operations are not naturally atomic across a get/set pair. Locks are
// created lazily and retained for process lifetime, matching the
// never-deleted lifecycle of accounts.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *userLocks) lock(userID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
