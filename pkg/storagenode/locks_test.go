package storagenode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockMutualExclusion(t *testing.T) {
	lt := newLockTable(nil)

	holder, ok := lt.Acquire("report", 0, "alice")
	assert.True(t, ok)
	assert.Empty(t, holder)

	holder, ok = lt.Acquire("report", 0, "bob")
	assert.False(t, ok)
	assert.Equal(t, "alice", holder)
}

func TestLockReleaseAllowsReacquire(t *testing.T) {
	lt := newLockTable(nil)
	lt.Acquire("report", 0, "alice")
	lt.Release("report", 0, "alice")

	_, ok := lt.Acquire("report", 0, "bob")
	assert.True(t, ok)
}

func TestLockReleaseByNonHolderIsNoOp(t *testing.T) {
	lt := newLockTable(nil)
	lt.Acquire("report", 0, "alice")
	lt.Release("report", 0, "bob")

	_, ok := lt.Acquire("report", 0, "carol")
	assert.False(t, ok, "alice still holds the lock; bob's release had no effect")
}

func TestLocksAreIndependentPerSentence(t *testing.T) {
	lt := newLockTable(nil)
	lt.Acquire("report", 0, "alice")

	_, ok := lt.Acquire("report", 1, "bob")
	assert.True(t, ok)
}

func TestUndoTableRejectsConsecutiveUndo(t *testing.T) {
	ut := newUndoTable()
	assert.False(t, ut.WasLastOpUndo("report"))

	ut.MarkUndo("report")
	assert.True(t, ut.WasLastOpUndo("report"))

	ut.ClearOnWrite("report")
	assert.False(t, ut.WasLastOpUndo("report"))
}
