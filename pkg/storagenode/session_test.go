package storagenode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := newNodeForFileStore(t, newTestFileStore(t))
	require.NoError(t, err)
	return n
}

func newNodeForFileStore(t *testing.T, fs *fileStore) (*Node, error) {
	t.Helper()
	return &Node{
		files: fs,
		locks: newLockTable(nil),
		undo:  newUndoTable(),
	}, nil
}

// TestWriteSplitScenario reproduces spec.md §8 scenario S2 end to end:
// "Hello world" -> insert "." at word 2 -> insert "Bye" at word 3 -> ETIRW
// -> "Hello world . Bye\n" on disk.
func TestWriteSplitScenario(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("Hello world")))

	sess, text, err := n.beginEdit("report", 0, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	reply, committed, _, err := sess.Insert(2, ".")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, "Hello world .", reply)

	reply, committed, _, err = sess.Insert(3, "Bye")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, "Hello world .", reply, "session continues on the first split sentence")

	_, committed, full, err := sess.Insert(0, "ETIRW")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, "Hello world . Bye\n", string(full))

	onDisk, err := n.files.Read("report")
	require.NoError(t, err)
	assert.Equal(t, "Hello world . Bye\n", string(onDisk))
}

func TestBeginEditLockConflict(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))

	_, _, err := n.beginEdit("report", 0, "alice")
	require.NoError(t, err)

	_, holder, err := n.beginEdit("report", 0, "bob")
	require.Error(t, err)
	var locked errLocked
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "alice", holder)
}

func TestSessionReleaseWithoutCommitLeavesFileUntouched(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("Hello world")))

	sess, _, err := n.beginEdit("report", 0, "alice")
	require.NoError(t, err)
	_, _, _, err = sess.Insert(0, "Oops")
	require.NoError(t, err)

	sess.release() // simulate client disconnect before ETIRW

	onDisk, err := n.files.Read("report")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", string(onDisk))

	_, ok := n.locks.Acquire("report", 0, "bob")
	assert.True(t, ok, "lock must be released on disconnect")
}

func TestEmptyPayloadInsertIsNoOp(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("Hello world")))

	sess, _, err := n.beginEdit("report", 0, "alice")
	require.NoError(t, err)

	reply, committed, _, err := sess.Insert(1, "")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, "Hello world", reply)
}

func TestOutOfRangeSentenceAccess(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.files.Create("report"))
	require.NoError(t, n.files.Write("report", []byte("One. Two.")))

	_, _, err := n.beginEdit("report", 5, "alice")
	require.Error(t, err)
}
