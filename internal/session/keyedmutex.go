package session

import "sync"

// KeyedMutex serializes work per key. Two webhook deliveries from the
// same caller must not interleave session mutation while a classify call
// is outstanding; deliveries from different callers stay independent.
// An entry is removed once its last holder unlocks with no waiters, so
// the map stays bounded by concurrent callers, not callers ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu sync.Mutex
	// refs counts the holder plus queued waiters. Guarded by KeyedMutex.mu.
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock acquires the lock for key and returns the unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
