// Package keylock serializes work per record key while letting unrelated
// keys proceed in parallel. A key may be held exclusively by one writer or
// shared by any number of readers.
package keylock

import (
	"slices"
	"sync"
)

type entry struct {
	mu   sync.RWMutex
	refs int
}

// Locker hands out one read-write mutex per key. Entries are reference
// counted and dropped once no goroutine holds or waits on them.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

func (l *Locker) acquire(key string, shared bool) *entry {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if shared {
		e.mu.RLock()
	} else {
		e.mu.Lock()
	}
	return e
}

func (l *Locker) release(key string, e *entry, shared bool) {
	if shared {
		e.mu.RUnlock()
	} else {
		e.mu.Unlock()
	}

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

// Lock locks every key exclusively and returns a function that unlocks
// them. Keys are deduplicated and taken in sorted order so two transitions
// touching the same pair of records can never deadlock.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	return l.Acquire(keys, nil)
}

// RLock takes every key shared.
func (l *Locker) RLock(keys ...string) (unlock func()) {
	return l.Acquire(nil, keys)
}

// Acquire locks exclusive keys for writing and shared keys for reading, all
// in one sorted pass. A key named in both is taken exclusively.
func (l *Locker) Acquire(exclusive, shared []string) (unlock func()) {
	mode := make(map[string]bool, len(exclusive)+len(shared))
	for _, k := range shared {
		mode[k] = true
	}
	for _, k := range exclusive {
		mode[k] = false
	}
	sorted := make([]string, 0, len(mode))
	for k := range mode {
		sorted = append(sorted, k)
	}
	slices.Sort(sorted)

	held := make([]*entry, len(sorted))
	for i, k := range sorted {
		held[i] = l.acquire(k, mode[k])
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			l.release(sorted[i], held[i], mode[sorted[i]])
		}
	}
}

// Len reports how many keys currently have an entry.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
