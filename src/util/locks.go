package util

import "sync"

// UserLocks hands out one mutex per user id. The allocation handler holds a
// user's mutex for the duration of a run, which enforces the
// at-most-one-in-flight-allocation-per-user requirement at the boundary.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*sync.Mutex)}
}

func (u *UserLocks) Get(userID int64) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.locks[userID]; !exists {
		u.locks[userID] = &sync.Mutex{}
	}
	return u.locks[userID]
}
