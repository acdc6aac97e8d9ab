package conversation

import (
	"sync"

	"github.com/PabloGalante/kin-agent/internal/domain"
)

// turnLocks serializes chat turns per conversation id. Entries are
// reference counted and dropped once no caller holds or waits on them.
type turnLocks struct {
	mu    sync.Mutex
	locks map[domain.ConversationID]*turnLock
}

type turnLock struct {
	mu   sync.Mutex
	refs int
}

func newTurnLocks() *turnLocks {
	return &turnLocks{locks: make(map[domain.ConversationID]*turnLock)}
}

func (t *turnLocks) lock(id domain.ConversationID) (unlock func()) {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &turnLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}

func (t *turnLocks) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
