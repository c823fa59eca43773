package noteservice

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// nameLocks serialises the check-then-act sequence of mutations on one note.
// Entries are created on demand and never evicted.
type nameLocks struct {
	m *xsync.Map[string, *sync.Mutex]
}

func newNameLocks() *nameLocks {
	return &nameLocks{m: xsync.NewMap[string, *sync.Mutex]()}
}

// lock acquires the mutex for name and returns its release func.
func (l *nameLocks) lock(name string) func() {
	mu, _ := l.m.LoadOrStore(name, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}
