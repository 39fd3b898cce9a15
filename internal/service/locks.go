package service

import "sync"

// lockTable serializes all mutations for one listing: a bid submission and a
// sweep resolution for the same listing never overlap. Different listings
// are fully independent. Entries are reference counted so the table does not
// grow with the number of listings ever seen.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*listingLock)}
}

func (t *lockTable) lock(listingID string) {
	t.mu.Lock()
	l, ok := t.locks[listingID]
	if !ok {
		l = &listingLock{}
		t.locks[listingID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

func (t *lockTable) unlock(listingID string) {
	t.mu.Lock()
	l := t.locks[listingID]
	l.refs--
	if l.refs == 0 {
		delete(t.locks, listingID)
	}
	t.mu.Unlock()

	l.mu.Unlock()
}
