package booking

import "sync"

// userLocks serializes the refresh-then-write-then-book sequence per user.
// Two concurrent bookings for the same user must not clobber each other's
// refreshed token; bookings for different users proceed independently.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[userID] = l
	}
	u.mu.Unlock()

	l.Lock()
	return l.Unlock
}
