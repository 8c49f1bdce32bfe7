package pgstore

import (
	"time"

	"github.com/corefs/docfs/pkg/metadatastore"
)

// fileModel, aclModel and checkpointModel are GORM row shapes; they are kept
// separate from metadatastore.FileRecord so the in-memory registry never
// carries a database tag.
type fileModel struct {
	Name       string `gorm:"primaryKey"`
	Owner      string `gorm:"index"`
	NodeID     string
	Folder     string `gorm:"index"`
	CreatedAt  time.Time
	ModifiedAt time.Time
	AccessedAt time.Time
	Size       int64
	WordCount  int64
	CharCount  int64

	ACL         []aclModel        `gorm:"foreignKey:FileName;references:Name"`
	Checkpoints []checkpointModel `gorm:"foreignKey:FileName;references:Name"`
}

type aclModel struct {
	FileName string `gorm:"primaryKey"`
	Username string `gorm:"primaryKey"`
	CanRead  bool
	CanWrite bool
}

type checkpointModel struct {
	FileName  string `gorm:"primaryKey"`
	Tag       string `gorm:"primaryKey"`
	Creator   string
	CreatedAt time.Time
	Size      int64
}

type folderModel struct {
	Path      string `gorm:"primaryKey"`
	Owner     string
	CreatedAt time.Time
}

func allModels() []any {
	return []any{&fileModel{}, &aclModel{}, &checkpointModel{}, &folderModel{}}
}

func toFileModel(r *metadatastore.FileRecord) *fileModel {
	m := &fileModel{
		Name: r.Name, Owner: r.Owner, NodeID: r.NodeID, Folder: r.Folder,
		CreatedAt: r.CreatedAt, ModifiedAt: r.ModifiedAt, AccessedAt: r.AccessedAt,
		Size: r.Size, WordCount: r.WordCount, CharCount: r.CharCount,
	}
	for _, e := range r.ACL {
		m.ACL = append(m.ACL, aclModel{FileName: r.Name, Username: e.Username, CanRead: e.CanRead, CanWrite: e.CanWrite})
	}
	for _, c := range r.Checkpoints {
		m.Checkpoints = append(m.Checkpoints, checkpointModel{
			FileName: r.Name, Tag: c.Tag, Creator: c.Creator, CreatedAt: c.CreatedAt, Size: c.Size,
		})
	}
	return m
}

func fromFileModel(m *fileModel) *metadatastore.FileRecord {
	r := &metadatastore.FileRecord{
		Name: m.Name, Owner: m.Owner, NodeID: m.NodeID, Folder: m.Folder,
		CreatedAt: m.CreatedAt, ModifiedAt: m.ModifiedAt, AccessedAt: m.AccessedAt,
		Size: m.Size, WordCount: m.WordCount, CharCount: m.CharCount,
		ACL:         make(map[string]*metadatastore.ACLEntry, len(m.ACL)),
		Checkpoints: make(map[string]*metadatastore.CheckpointRecord, len(m.Checkpoints)),
	}
	for _, e := range m.ACL {
		r.ACL[e.Username] = &metadatastore.ACLEntry{Username: e.Username, CanRead: e.CanRead, CanWrite: e.CanWrite}
	}
	for _, c := range m.Checkpoints {
		r.Checkpoints[c.Tag] = &metadatastore.CheckpointRecord{Tag: c.Tag, Creator: c.Creator, CreatedAt: c.CreatedAt, Size: c.Size}
	}
	return r
}

func toFolderModel(f *metadatastore.FolderRecord) *folderModel {
	return &folderModel{Path: f.Path, Owner: f.Owner, CreatedAt: f.CreatedAt}
}

func fromFolderModel(m *folderModel) *metadatastore.FolderRecord {
	return &metadatastore.FolderRecord{Path: m.Path, Owner: m.Owner, CreatedAt: m.CreatedAt}
}
