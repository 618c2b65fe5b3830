package basket

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// accountLocks serializes work per account inside one process. Entries are
// reference counted and dropped when the last holder or waiter leaves.
type accountLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// acquire blocks until the account is free or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (l *accountLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.leave(id, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.leave(id, entry)
		})
	}, nil
}

func (l *accountLocks) leave(id uuid.UUID, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, id)
	}
}

func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
