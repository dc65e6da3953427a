package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// keyedMutex serializes operations that share a key while letting
// operations on different keys proceed concurrently.  Entries are
// reference counted and removed once the last holder unlocks, so the
// map does not grow with the id space.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns the matching unlock
// function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*lockEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// requestKey scopes a lock to a single service request id.
func requestKey(id uint64) string { return fmt.Sprintf("request:%d", id) }

// bookingKey scopes a lock to a single booking id.
func bookingKey(id uint64) string { return fmt.Sprintf("booking:%d", id) }

// roomDateKey scopes the confirmation exclusion to one room on one
// calendar date, so confirmations for different rooms or days never
// block each other.
func roomDateKey(room model.Room, start time.Time) string {
	return fmt.Sprintf("room:%s:%s", room, start.UTC().Format(dateLayout))
}
