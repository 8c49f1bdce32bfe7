package metadatastore

import (
	"strings"
	"time"
)

// CreateFolder creates path (and, mkdir-p style, any missing ancestor) owned
// by owner. Creating an existing leaf folder fails; an ancestor that
// already exists is left untouched (spec.md §3, §4.2 CREATEFOLDER).
func (s *Store) CreateFolder(path, owner string) error {
	if path == "" {
		return ErrFolderExists
	}

	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()

	if _, exists := s.folders[path]; exists {
		return ErrFolderExists
	}

	parts := strings.Split(path, "/")
	acc := ""
	for _, part := range parts {
		if acc == "" {
			acc = part
		} else {
			acc = acc + "/" + part
		}
		if _, exists := s.folders[acc]; !exists {
			s.folders[acc] = &FolderRecord{Path: acc, Owner: owner, CreatedAt: time.Now()}
		}
	}
	return nil
}

// folderExists reports whether path is the root or a known folder.
func (s *Store) folderExists(path string) bool {
	if path == "" {
		return true
	}
	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()
	_, ok := s.folders[path]
	return ok
}

// ViewFolder returns every file record whose Folder attribute equals path
// (spec.md §4.2 VIEWFOLDER). The root folder ("") matches files with no
// folder set.
func (s *Store) ViewFolder(path string) ([]*FileRecord, error) {
	if !s.folderExists(path) {
		return nil, ErrFolderNotFound
	}
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()
	var out []*FileRecord
	for _, f := range s.files {
		if f.Folder == path {
			out = append(out, f.clone())
		}
	}
	return out, nil
}
