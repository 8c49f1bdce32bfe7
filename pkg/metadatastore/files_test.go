package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(Config{SearchCacheCapacity: 50})
}

func TestCreateFileRejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	_, err = s.CreateFile("report", "bob", "node2", "")
	assert.ErrorIs(t, err, ErrFileExists)
}

func TestCreateFileRejectsMissingFolder(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "docs")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestDeleteFileRequiresOwnership(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	err = s.DeleteFile("report", "bob")
	assert.ErrorIs(t, err, ErrDenied)

	err = s.DeleteFile("report", "alice")
	require.NoError(t, err)

	_, err = s.GetFile("report")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestNamingUniquenessAfterCreateDelete(t *testing.T) {
	// spec.md §8 invariant 1.
	s := newTestStore(t)
	_, err := s.CreateFile("a", "alice", "node1", "")
	require.NoError(t, err)
	_, err = s.CreateFile("b", "alice", "node1", "")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range s.ListFiles() {
		assert.False(t, names[f.Name], "duplicate name %q", f.Name)
		names[f.Name] = true
	}

	require.NoError(t, s.DeleteFile("a", "alice"))
	_, err = s.CreateFile("a", "bob", "node2", "")
	require.NoError(t, err)

	names = map[string]bool{}
	for _, f := range s.ListFiles() {
		assert.False(t, names[f.Name])
		names[f.Name] = true
	}
}

func TestCreateDeleteInvalidatesSearchCache(t *testing.T) {
	// spec.md §8 invariant 10.
	s := newTestStore(t)
	_, err := s.CreateFile("alpha", "alice", "node1", "")
	require.NoError(t, err)

	_ = s.Search("alpha", "alice")
	assert.Equal(t, 1, s.CacheSize())

	_, err = s.CreateFile("beta", "alice", "node1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.CacheSize())

	_ = s.Search("alpha", "alice")
	assert.Equal(t, 1, s.CacheSize())

	require.NoError(t, s.DeleteFile("beta", "alice"))
	assert.Equal(t, 0, s.CacheSize())
}
