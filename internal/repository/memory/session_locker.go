package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionLocker hands out one mutex per session id so that two concurrent
// turns for the same session are serialized: exactly one advances the step,
// the other observes the updated state. Entries expire well after any
// realistic turn duration so idle sessions don't pin memory.
type SessionLocker struct {
	mu    sync.Mutex
	locks *cache.Cache
}

func NewSessionLocker() *SessionLocker {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionLocker{
		locks: c,
	}
}

// Get returns the mutex for the session, creating it if needed. Each Get
// refreshes the entry's expiration.
func (l *SessionLocker) Get(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if x, found := l.locks.Get(sessionID); found {
		l.locks.Set(sessionID, x, cache.DefaultExpiration)
		return x.(*sync.Mutex)
	}
	m := &sync.Mutex{}
	l.locks.Set(sessionID, m, cache.DefaultExpiration)
	return m
}
