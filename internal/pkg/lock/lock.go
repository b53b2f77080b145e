// Package lock provides per-chat locking so that each game processes one
// action at a time. The whole Game aggregate is the unit of consistency, so
// a single mutex per chat is all the granularity needed; oracle calls run
// before the lock is taken so a slow completion in one chat cannot stall
// another.
package lock

import "sync"

// chatMutex wraps a mutex so the map can hold stable pointers.
type chatMutex struct {
	mu sync.Mutex
}

// ChatLock serializes game mutation per chat.
type ChatLock struct {
	locks sync.Map // map[int64]*chatMutex
}

// NewChatLock creates a new ChatLock instance.
func NewChatLock() *ChatLock {
	return &ChatLock{}
}

// getLock retrieves or creates the mutex for the given chat ID.
func (cl *ChatLock) getLock(chatID int64) *chatMutex {
	if v, ok := cl.locks.Load(chatID); ok {
		return v.(*chatMutex)
	}
	actual, _ := cl.locks.LoadOrStore(chatID, &chatMutex{})
	return actual.(*chatMutex)
}

// Lock acquires the lock for a chat. Call before any game mutation.
func (cl *ChatLock) Lock(chatID int64) {
	cl.getLock(chatID).mu.Lock()
}

// Unlock releases the lock for a chat.
func (cl *ChatLock) Unlock(chatID int64) {
	if v, ok := cl.locks.Load(chatID); ok {
		v.(*chatMutex).mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking. Returns true if
// the lock was acquired.
func (cl *ChatLock) TryLock(chatID int64) bool {
	return cl.getLock(chatID).mu.TryLock()
}

// WithLock executes fn while holding the chat's lock.
func (cl *ChatLock) WithLock(chatID int64, fn func() error) error {
	cl.Lock(chatID)
	defer cl.Unlock(chatID)
	return fn()
}

// IsLocked reports whether a chat currently has an active lock. This is a
// point-in-time check and may change immediately after.
func (cl *ChatLock) IsLocked(chatID int64) bool {
	if v, ok := cl.locks.Load(chatID); ok {
		m := v.(*chatMutex)
		if m.mu.TryLock() {
			m.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
