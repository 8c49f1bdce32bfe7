package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderAutoCreatesAncestors(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFolder("a/b/c", "alice"))

	assert.True(t, s.folderExists("a"))
	assert.True(t, s.folderExists("a/b"))
	assert.True(t, s.folderExists("a/b/c"))
}

func TestCreateFolderRejectsDuplicateLeaf(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFolder("docs", "alice"))
	err := s.CreateFolder("docs", "bob")
	assert.ErrorIs(t, err, ErrFolderExists)
}

func TestViewFolderListsMatchingFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFolder("docs", "alice"))
	_, err := s.CreateFile("report", "alice", "node1", "docs")
	require.NoError(t, err)
	_, err = s.CreateFile("notes", "alice", "node1", "")
	require.NoError(t, err)

	files, err := s.ViewFolder("docs")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report", files[0].Name)
}

func TestViewFolderUnknownFolder(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ViewFolder("missing")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}
