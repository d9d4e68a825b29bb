package locking

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock cannot be acquired within the caller's
// wait budget. Callers are expected to retry with backoff.
var ErrTimeout = errors.New("locking: acquire timed out")

type entry struct {
	ch   chan struct{}
	refs int
}

// KeyedLocks serializes work per string key. Transitions on the same
// submission or dispute id must not interleave; transitions on different ids
// proceed fully in parallel.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*entry)}
}

// Acquire blocks until the key's lock is held, the wait budget elapses, or
// ctx is done. On success the returned release func must be called exactly
// once.
func (l *KeyedLocks) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return func() { l.release(key, e) }, nil
	case <-timer.C:
		l.unref(key, e)
		return nil, ErrTimeout
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocks) release(key string, e *entry) {
	<-e.ch
	l.unref(key, e)
}

func (l *KeyedLocks) unref(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
