// Package lock provides a registry of per-key mutexes.  Billing
// handlers lock the reservation ID before opening their database
// transaction, so concurrent postings against the same folio
// serialize in process before they compete for row locks.
package lock

import "sync"

// Keyed hands out one mutex per key.  Mutexes are created on first
// use and kept for the life of the process; the working set is the
// set of reservations touched since startup, which stays small.
type Keyed struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewKeyed returns an empty registry.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it if needed, and returns
// the unlock function.  Callers defer the returned function.
func (k *Keyed) Lock(key uint64) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
