package services

import "sync"

// IndexLocks serialises destructive and bulk operations per index name.
// Driving adapters take the lock around rebuild and ingest; the core
// services themselves do not.
type IndexLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIndexLocks creates an empty lock table.
func NewIndexLocks() *IndexLocks {
	return &IndexLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for index and returns its release function.
func (l *IndexLocks) Lock(index string) func() {
	l.mu.Lock()
	m, ok := l.locks[index]
	if !ok {
		m = &sync.Mutex{}
		l.locks[index] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// TryLock acquires the lock for index without blocking.
// It returns nil if the index is busy.
func (l *IndexLocks) TryLock(index string) func() {
	l.mu.Lock()
	m, ok := l.locks[index]
	if !ok {
		m = &sync.Mutex{}
		l.locks[index] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil
	}
	return m.Unlock
}
