package metadatastore

// CheckAccess reports whether username may access name under the requested
// mask. The owner always has full rights. Read-only records are cloned, so
// mutation must go through AddAccess/RemAccess.
func (s *Store) CheckAccess(name, username string, want AccessType) (bool, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()

	rec, ok := s.files[name]
	if !ok {
		return false, ErrFileNotFound
	}
	if rec.Owner == username {
		return true, nil
	}
	entry, ok := rec.ACL[username]
	if !ok {
		return false, nil
	}
	if want.CanWrite() && !entry.CanWrite {
		return false, nil
	}
	if want.CanRead() && !entry.CanRead {
		return false, nil
	}
	return true, nil
}

// IsOwner reports whether username owns name.
func (s *Store) IsOwner(name, username string) (bool, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()
	rec, ok := s.files[name]
	if !ok {
		return false, ErrFileNotFound
	}
	return rec.Owner == username, nil
}

// AddAccess grants or updates target's ACL entry on name. Only the owner
// may call this (checked by the caller); adding an entry that already
// exists updates it, and granting write promotes an existing read-only
// entry (spec.md §4.2 ADDACCESS).
func (s *Store) AddAccess(name, requester, target string, mask AccessType) error {
	mask = mask.Normalize()

	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	rec, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	if rec.Owner != requester {
		return ErrDenied
	}
	if target == rec.Owner {
		return ErrCannotRemoveOwner
	}

	if entry, exists := rec.ACL[target]; exists {
		if mask.CanRead() {
			entry.CanRead = true
		}
		if mask.CanWrite() {
			entry.CanWrite = true
			entry.CanRead = true
		}
		return nil
	}

	rec.ACL[target] = &ACLEntry{
		Username: target,
		CanRead:  mask.CanRead(),
		CanWrite: mask.CanWrite(),
	}
	return nil
}

// RemAccess removes target's ACL entry on name. Only the owner may call
// this; the owner may not remove themselves (spec.md §4.2 REMACCESS).
func (s *Store) RemAccess(name, requester, target string) error {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	rec, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	if rec.Owner != requester {
		return ErrDenied
	}
	if target == rec.Owner {
		return ErrCannotRemoveOwner
	}
	delete(rec.ACL, target)
	return nil
}
