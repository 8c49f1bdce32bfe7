package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccessOwnerExclusion(t *testing.T) {
	// spec.md §8 invariant 2.
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	err = s.AddAccess("report", "alice", "alice", AccessRead)
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)

	rec, _ := s.GetFile("report")
	_, ownerInACL := rec.ACL["alice"]
	assert.False(t, ownerInACL)
}

func TestAddAccessWriteImpliesRead(t *testing.T) {
	// spec.md §8 invariant 3.
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	require.NoError(t, s.AddAccess("report", "alice", "bob", AccessWrite))

	rec, _ := s.GetFile("report")
	entry := rec.ACL["bob"]
	assert.True(t, entry.CanWrite)
	assert.True(t, entry.CanRead)
}

func TestAddAccessPromotesExistingReadToWrite(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	require.NoError(t, s.AddAccess("report", "alice", "bob", AccessRead))
	require.NoError(t, s.AddAccess("report", "alice", "bob", AccessWrite))

	rec, _ := s.GetFile("report")
	assert.True(t, rec.ACL["bob"].CanWrite)
}

func TestAddAccessRequiresOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	err = s.AddAccess("report", "bob", "carol", AccessRead)
	assert.ErrorIs(t, err, ErrDenied)
}

func TestRemAccessCannotRemoveOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	err = s.RemAccess("report", "alice", "alice")
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
}

func TestCheckAccess(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)
	require.NoError(t, s.AddAccess("report", "alice", "bob", AccessRead))

	ok, err := s.CheckAccess("report", "alice", AccessWrite)
	require.NoError(t, err)
	assert.True(t, ok, "owner always has full rights")

	ok, _ = s.CheckAccess("report", "bob", AccessRead)
	assert.True(t, ok)

	ok, _ = s.CheckAccess("report", "bob", AccessWrite)
	assert.False(t, ok)

	ok, _ = s.CheckAccess("report", "carol", AccessRead)
	assert.False(t, ok)
}
