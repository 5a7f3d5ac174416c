// Package lock provides a map of per-key mutexes for serializing access to
// logically independent resources identified by a comparable key.
package lock

import (
	"sync"

	"github.com/apex/log"
)

// KeyLocker hands out one *sync.Mutex per distinct key, created lazily.
// It does not evict: a key's mutex lives for the process lifetime, which is
// fine for keys drawn from a bounded namespace such as object names or
// bucket ids.
type KeyLocker[K comparable] struct {
	mapMutex sync.Mutex
	locks    map[K]*sync.Mutex
}

func NewKeyLocker[K comparable]() *KeyLocker[K] {
	return &KeyLocker[K]{
		locks: make(map[K]*sync.Mutex),
	}
}

func (l *KeyLocker[K]) AcquireLock(key K) {
	l.mapMutex.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mapMutex.Unlock()

	m.Lock()
}

func (l *KeyLocker[K]) ReleaseLock(key K) {
	l.mapMutex.Lock()
	m, ok := l.locks[key]
	l.mapMutex.Unlock()

	if !ok {
		log.Errorf("lock: ReleaseLock called on key %v with no mutex", key)
		return
	}

	m.Unlock()
}

// WithLock runs fn with key's mutex held and releases it even if fn panics.
func (l *KeyLocker[K]) WithLock(key K, fn func() error) error {
	l.AcquireLock(key)
	defer l.ReleaseLock(key)
	return fn()
}
