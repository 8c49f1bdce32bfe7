package metadatastore

import "time"

// CreateFile adds a new file record owned by owner, assigned to nodeID, in
// folder (which must already exist). It invalidates the search cache
// (spec.md §4.2 CREATE, §8 invariant 10).
func (s *Store) CreateFile(name, owner, nodeID, folder string) (*FileRecord, error) {
	if folder != "" {
		if !s.folderExists(folder) {
			return nil, ErrFolderNotFound
		}
	}

	s.filesMu.Lock()
	if _, exists := s.files[name]; exists {
		s.filesMu.Unlock()
		return nil, ErrFileExists
	}
	now := time.Now()
	rec := &FileRecord{
		Name:        name,
		Owner:       owner,
		NodeID:      nodeID,
		Folder:      folder,
		CreatedAt:   now,
		ModifiedAt:  now,
		AccessedAt:  now,
		ACL:         make(map[string]*ACLEntry),
		Checkpoints: make(map[string]*CheckpointRecord),
	}
	s.files[name] = rec
	s.filesMu.Unlock()

	s.cache.invalidateAll()
	s.trackNodeFile(nodeID, name)
	return rec.clone(), nil
}

// AdoptFile installs a file record for a node that is announcing it during
// registration (spec.md §4.9): used for both brand-new nodes (owner =
// "system") and rejoining nodes that mention a file not already known to
// the registry. It does not invalidate the search cache, matching the
// registration handshake's bulk nature.
func (s *Store) AdoptFile(name, owner, nodeID string) {
	s.filesMu.Lock()
	if _, exists := s.files[name]; !exists {
		now := time.Now()
		s.files[name] = &FileRecord{
			Name:        name,
			Owner:       owner,
			NodeID:      nodeID,
			CreatedAt:   now,
			ModifiedAt:  now,
			AccessedAt:  now,
			ACL:         make(map[string]*ACLEntry),
			Checkpoints: make(map[string]*CheckpointRecord),
		}
	}
	s.filesMu.Unlock()
	s.trackNodeFile(nodeID, name)
}

// GetFile returns a snapshot of the named file record.
func (s *Store) GetFile(name string) (*FileRecord, error) {
	s.filesMu.RLock()
	rec, ok := s.files[name]
	s.filesMu.RUnlock()
	if !ok {
		return nil, ErrFileNotFound
	}
	return rec.clone(), nil
}

// DeleteFile removes name if requester is its owner, invalidating the
// search cache.
func (s *Store) DeleteFile(name, requester string) error {
	s.filesMu.Lock()
	rec, ok := s.files[name]
	if !ok {
		s.filesMu.Unlock()
		return ErrFileNotFound
	}
	if rec.Owner != requester {
		s.filesMu.Unlock()
		return ErrDenied
	}
	delete(s.files, name)
	s.filesMu.Unlock()

	s.cache.invalidateAll()
	s.untrackNodeFile(rec.NodeID, name)
	return nil
}

// ListFiles returns a snapshot of every file record, for VIEW/LIST.
func (s *Store) ListFiles() []*FileRecord {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()
	out := make([]*FileRecord, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f.clone())
	}
	return out
}

// UpdateStats refreshes a file's cached size/word/char counts, e.g. after a
// node reports fresh stats for VIEW -l or INFO (spec.md §4.2).
func (s *Store) UpdateStats(name string, size, words, chars int64) error {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	rec, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	rec.Size, rec.WordCount, rec.CharCount = size, words, chars
	rec.ModifiedAt = time.Now()
	return nil
}

// Touch updates a file's accessed timestamp, e.g. after READ.
func (s *Store) Touch(name string) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	if rec, ok := s.files[name]; ok {
		rec.AccessedAt = time.Now()
	}
}

// ReassignNode moves name onto a new owning node, e.g. during READ failover
// (spec.md §4.2).
func (s *Store) ReassignNode(name, newNodeID string) error {
	s.filesMu.Lock()
	rec, ok := s.files[name]
	if !ok {
		s.filesMu.Unlock()
		return ErrFileNotFound
	}
	oldNodeID := rec.NodeID
	rec.NodeID = newNodeID
	s.filesMu.Unlock()

	s.untrackNodeFile(oldNodeID, name)
	s.trackNodeFile(newNodeID, name)
	return nil
}

// SetFolder updates a file's folder attribute for MOVE (spec.md §4.2);
// requires write permission, checked by the caller via CheckAccess before
// calling SetFolder.
func (s *Store) SetFolder(name, folder string) error {
	if folder != "" && !s.folderExists(folder) {
		return ErrFolderNotFound
	}
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	rec, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	rec.Folder = folder
	rec.ModifiedAt = time.Now()
	return nil
}
