// Package metadatastore implements the coordinator's in-memory metadata:
// the file registry, ACLs, folder tree, checkpoint index, user registry,
// active-session set, access-request queue, search cache, and node
// records (spec.md §3-4.3). Each subsystem is guarded by its own lock so
// that an operation touching only, say, folders never contends with one
// touching the search cache. I/O (network or disk) is never performed while
// a lock is held.
package metadatastore

import (
	"sync"
	"time"
)

// Persister snapshots and restores the durable subset of the store: the
// file registry and its ACLs (spec.md §4.5). Folders, checkpoints, sessions
// and the search cache are not part of the spec-mandated contract; a
// Persister implementation MAY additionally carry them (pkg/metadatastore/
// persist/badgerstore and pgstore do; persist/textfile matches the
// spec-mandated flat-file format exactly and does not).
type Persister interface {
	// Save writes every file record (and its ACL entries) in files.
	Save(files []*FileRecord) error
	// Load returns every file record previously saved.
	Load() ([]*FileRecord, error)
}

// FolderPersister is an optional capability a Persister may additionally
// implement to carry the folder tree across restarts (persist/badgerstore
// and persist/pgstore do; persist/textfile does not, matching the
// spec-mandated registry.dat format exactly).
type FolderPersister interface {
	SaveFolders(folders []*FolderRecord) error
	LoadFolders() ([]*FolderRecord, error)
}

// Store is the coordinator's complete metadata state.
type Store struct {
	filesMu sync.RWMutex
	files   map[string]*FileRecord

	usersMu sync.Mutex
	users   map[string]*UserRecord

	sessionsMu sync.Mutex
	sessions   map[string]time.Time

	foldersMu sync.Mutex
	folders   map[string]*FolderRecord

	requestsMu sync.Mutex
	requests   map[int64]*AccessRequest
	nextReqID  int64

	nodesMu       sync.Mutex
	nodes         map[string]*NodeRecord
	nodeOrder     []string // registration order, for CREATE default-node choice
	nodeEvictionT time.Duration

	cache *searchCache
}

// Config bounds the search cache and (optionally) node eviction, mirroring
// pkg/config.SearchCacheConfig and pkg/config.ClusterConfig.NodeEvictionTTL.
type Config struct {
	// SearchCacheCapacity is the LRU capacity for cached SEARCH results.
	// Spec.md §3 mandates 50.
	SearchCacheCapacity int

	// NodeEvictionTTL, when non-zero, drops a node from CREATE's default
	// placement candidates once FAILED for longer than this (SPEC_FULL.md
	// §4, resolving spec.md §9 Open Question 5). Zero preserves the base
	// spec behavior of accumulating failed nodes forever.
	NodeEvictionTTL time.Duration
}

// New creates an empty Store. Callers that need to restore persisted state
// should follow with LoadFrom.
func New(cfg Config) *Store {
	capacity := cfg.SearchCacheCapacity
	if capacity <= 0 {
		capacity = 50
	}
	return &Store{
		files:         make(map[string]*FileRecord),
		users:         make(map[string]*UserRecord),
		sessions:      make(map[string]time.Time),
		folders:       map[string]*FolderRecord{"": {Path: "", CreatedAt: time.Now()}},
		requests:      make(map[int64]*AccessRequest),
		nodes:         make(map[string]*NodeRecord),
		nodeEvictionT: cfg.NodeEvictionTTL,
		cache:         newSearchCache(capacity),
	}
}

// LoadFrom restores the file registry (and ACLs) from p, replacing any
// in-memory state. Intended to be called once at startup before the
// coordinator begins accepting connections.
func (s *Store) LoadFrom(p Persister) error {
	records, err := p.Load()
	if err != nil {
		return err
	}

	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	for _, r := range records {
		if r.ACL == nil {
			r.ACL = make(map[string]*ACLEntry)
		}
		if r.Checkpoints == nil {
			r.Checkpoints = make(map[string]*CheckpointRecord)
		}
		s.files[r.Name] = r
	}
	return nil
}

// SaveTo snapshots the current file registry through p. Called on shutdown
// (spec.md §4.5).
func (s *Store) SaveTo(p Persister) error {
	s.filesMu.RLock()
	records := make([]*FileRecord, 0, len(s.files))
	for _, f := range s.files {
		records = append(records, f.clone())
	}
	s.filesMu.RUnlock()
	return p.Save(records)
}

// LoadFoldersFrom restores the folder tree from p if p implements
// FolderPersister; otherwise it is a no-op, since persist/textfile cannot
// carry folders.
func (s *Store) LoadFoldersFrom(p Persister) error {
	fp, ok := p.(FolderPersister)
	if !ok {
		return nil
	}
	folders, err := fp.LoadFolders()
	if err != nil {
		return err
	}

	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()
	for _, f := range folders {
		s.folders[f.Path] = f
	}
	return nil
}

// SaveFoldersTo snapshots the folder tree through p if p implements
// FolderPersister; otherwise it is a no-op.
func (s *Store) SaveFoldersTo(p Persister) error {
	fp, ok := p.(FolderPersister)
	if !ok {
		return nil
	}

	s.foldersMu.Lock()
	folders := make([]*FolderRecord, 0, len(s.folders))
	for path, f := range s.folders {
		if path == "" {
			continue // root is implicit, never persisted
		}
		cp := *f
		folders = append(folders, &cp)
	}
	s.foldersMu.Unlock()
	return fp.SaveFolders(folders)
}
