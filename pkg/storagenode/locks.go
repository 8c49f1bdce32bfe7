package storagenode

import (
	"sync"
	"time"

	"github.com/corefs/docfs/pkg/metrics"
)

// sentenceKey identifies one (file, sentence) pair in the lock table
// (spec.md §4.8: "a map from (file, sentence) to holder, not a linked
// list").
type sentenceKey struct {
	file     string
	sentence int32
}

// lockTable is the node's in-memory sentence-lock map. Locks are lost on
// node restart; spec.md §4.8 notes this is acceptable since no persistent
// state depends on them.
type lockTable struct {
	mu      sync.Mutex
	holders map[sentenceKey]string
	metrics metrics.LockMetrics
}

func newLockTable(m metrics.LockMetrics) *lockTable {
	return &lockTable{holders: make(map[sentenceKey]string), metrics: m}
}

// Acquire attempts to take the lock on (file, sentence) for holder. If
// already held by a different username, it returns that username and ok
// false (spec.md §4.7 "Lock rule").
func (t *lockTable) Acquire(file string, sentence int32, holder string) (existingHolder string, ok bool) {
	start := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	key := sentenceKey{file: file, sentence: sentence}
	if current, held := t.holders[key]; held {
		if t.metrics != nil {
			t.metrics.RecordLockContended()
		}
		return current, false
	}
	t.holders[key] = holder
	if t.metrics != nil {
		t.metrics.RecordLockAcquired(time.Since(start))
		t.metrics.SetHeldLocks(len(t.holders))
	}
	return "", true
}

// Release drops the lock on (file, sentence), if held by holder. Releasing
// a lock not held by holder (or not held at all) is a no-op: session
// cleanup always calls Release on disconnect regardless of how far the
// edit session progressed.
func (t *lockTable) Release(file string, sentence int32, holder string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := sentenceKey{file: file, sentence: sentence}
	if t.holders[key] != holder {
		return
	}
	delete(t.holders, key)
	if t.metrics != nil {
		t.metrics.RecordLockReleased()
		t.metrics.SetHeldLocks(len(t.holders))
	}
}

// undoTable tracks, per file, whether the last completed operation was an
// UNDO; a second consecutive UNDO is rejected (spec.md §3 "Undo flag",
// invariant 9).
type undoTable struct {
	mu       sync.Mutex
	lastUndo map[string]bool
}

func newUndoTable() *undoTable {
	return &undoTable{lastUndo: make(map[string]bool)}
}

func (u *undoTable) WasLastOpUndo(file string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastUndo[file]
}

func (u *undoTable) MarkUndo(file string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastUndo[file] = true
}

// ClearOnWrite resets the flag after a successful ETIRW commit, so the next
// UNDO is allowed once more (spec.md §4.7 step 4).
func (u *undoTable) ClearOnWrite(file string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.lastUndo, file)
}
