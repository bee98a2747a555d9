// Package keyedlock provides mutual exclusion per key.
package keyedlock

import (
	"context"
	"sync"

	"github.com/myrjola/gumshoe/internal/errors"
)

type entry struct {
	// token holds one element while the key is locked.
	token chan struct{}
	refs  int
}

// Locker serializes work sharing the same key while work on different keys runs concurrently. The zero value is not
// usable, create one with [New].
//
// Entries are reference counted and removed once no goroutine holds or waits for the key, so the table only grows
// with the number of keys in use.
type Locker[TKey comparable] struct {
	mu      sync.Mutex
	entries map[TKey]*entry
}

func New[TKey comparable]() *Locker[TKey] {
	return &Locker[TKey]{
		mu:      sync.Mutex{},
		entries: map[TKey]*entry{},
	}
}

// Lock blocks until the key is acquired or ctx is done. The returned function releases the key and is safe to call
// more than once.
func (l *Locker[TKey]) Lock(ctx context.Context, key TKey) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{token: make(chan struct{}, 1), refs: 0}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.token <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, errors.Wrap(ctx.Err(), "wait for key lock")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.token
			l.release(key, e)
		})
	}, nil
}

func (l *Locker[TKey]) release(key TKey, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or waited for.
func (l *Locker[TKey]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
