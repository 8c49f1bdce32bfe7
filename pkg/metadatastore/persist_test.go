package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFolderPersister is a minimal in-memory FolderPersister used to test
// Store's LoadFoldersFrom/SaveFoldersTo glue without pulling in a real
// BadgerDB (see pkg/metadatastore/persist/badgerstore for the real thing).
type fakeFolderPersister struct {
	files   []*FileRecord
	folders []*FolderRecord
}

func (f *fakeFolderPersister) Save(files []*FileRecord) error { f.files = files; return nil }
func (f *fakeFolderPersister) Load() ([]*FileRecord, error)   { return f.files, nil }
func (f *fakeFolderPersister) SaveFolders(folders []*FolderRecord) error {
	f.folders = folders
	return nil
}
func (f *fakeFolderPersister) LoadFolders() ([]*FolderRecord, error) { return f.folders, nil }

func TestSaveFoldersToOmitsImplicitRoot(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFolder("docs", "alice"))

	p := &fakeFolderPersister{}
	require.NoError(t, s.SaveFoldersTo(p))

	require.Len(t, p.folders, 1)
	assert.Equal(t, "docs", p.folders[0].Path)
}

func TestLoadFoldersFromRestoresTree(t *testing.T) {
	p := &fakeFolderPersister{folders: []*FolderRecord{{Path: "docs", Owner: "alice"}}}

	s := newTestStore(t)
	require.NoError(t, s.LoadFoldersFrom(p))
	assert.True(t, s.folderExists("docs"))
}

func TestPersisterWithoutFolderSupportIsNoOp(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFolder("docs", "alice"))

	// plainPersisterStub does not implement FolderPersister.
	require.NoError(t, s.SaveFoldersTo(plainPersisterStub{}))
	require.NoError(t, s.LoadFoldersFrom(plainPersisterStub{}))
}

// plainPersisterStub implements Persister only, exercising the type-assertion
// fallback path in SaveFoldersTo/LoadFoldersFrom.
type plainPersisterStub struct{}

func (plainPersisterStub) Save(files []*FileRecord) error { return nil }
func (plainPersisterStub) Load() ([]*FileRecord, error)   { return nil, nil }
