package metadatastore

import "time"

// RegisterNode installs or refreshes a node record. If id is already known
// this is a rejoin: the existing record (and therefore every file still
// assigned to it) is preserved and only refreshed with the new address;
// files is merged in (new names are adopted, see AdoptFile) rather than
// replacing the existing set (spec.md §4.9). A brand-new id is appended to
// the registration-order list CREATE's default-node selection walks.
func (s *Store) RegisterNode(id, ip string, clientPort, controlPort int, announcedFiles []string) (rejoin bool) {
	s.nodesMu.Lock()
	rec, exists := s.nodes[id]
	if !exists {
		rec = &NodeRecord{
			ID:           id,
			Files:        make(map[string]struct{}),
			RegisteredAt: time.Now(),
		}
		s.nodes[id] = rec
		s.nodeOrder = append(s.nodeOrder, id)
	}
	rec.IP = ip
	rec.ClientPort = clientPort
	rec.ControlPort = controlPort
	rec.Status = NodeActive
	rec.LastHeartbeat = time.Now()
	rec.FailedSince = time.Time{}
	s.nodesMu.Unlock()

	owner := "system"
	for _, name := range announcedFiles {
		if !exists {
			s.AdoptFile(name, owner, id)
			continue
		}
		// Rejoin: only adopt names not already in the registry: spec.md
		// §4.9 "add only file names that are not already in the registry".
		if _, err := s.GetFile(name); err != nil {
			s.AdoptFile(name, owner, id)
		}
	}

	return exists
}

// GetNode returns a snapshot of node id's record.
func (s *Store) GetNode(id string) (*NodeRecord, error) {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	rec, ok := s.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return cloneNode(rec), nil
}

// ListNodes returns a snapshot of every node record.
func (s *Store) ListNodes() []*NodeRecord {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	out := make([]*NodeRecord, 0, len(s.nodes))
	for _, rec := range s.nodes {
		out = append(out, cloneNode(rec))
	}
	return out
}

// DefaultCreateNode returns the id of the first currently active node by
// registration order (spec.md §4.2 CREATE's implicit node selection). When
// NodeEvictionTTL is set, nodes FAILED for longer than the TTL are skipped
// (SPEC_FULL.md §4).
func (s *Store) DefaultCreateNode() (string, bool) {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()

	now := time.Now()
	for _, id := range s.nodeOrder {
		rec := s.nodes[id]
		if rec.Status != NodeActive {
			continue
		}
		if s.nodeEvictionT > 0 && !rec.FailedSince.IsZero() && now.Sub(rec.FailedSince) > s.nodeEvictionT {
			continue
		}
		return id, true
	}
	return "", false
}

// AnyActiveNodeExcept returns an active node other than exclude, for READ
// failover reassignment (spec.md §4.2 READ fallback).
func (s *Store) AnyActiveNodeExcept(exclude string) (string, bool) {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	for _, id := range s.nodeOrder {
		if id == exclude {
			continue
		}
		if s.nodes[id].Status == NodeActive {
			return id, true
		}
	}
	return "", false
}

// MarkHeartbeatSuccess refreshes a node's last-heartbeat time and flips it
// back to active if it was previously failed (spec.md §4.4).
func (s *Store) MarkHeartbeatSuccess(id string) {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	rec, ok := s.nodes[id]
	if !ok {
		return
	}
	rec.LastHeartbeat = time.Now()
	rec.Status = NodeActive
	rec.FailedSince = time.Time{}
}

// MarkFailed flips a node to FAILED (spec.md §4.4), e.g. after a heartbeat
// I/O error or timeout.
func (s *Store) MarkFailed(id string) {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	rec, ok := s.nodes[id]
	if !ok {
		return
	}
	if rec.Status != NodeFailed {
		rec.Status = NodeFailed
		rec.FailedSince = time.Now()
	}
}

// trackNodeFile records that id owns name, for ListNodes' FileCount and the
// registration handshake's "clear stale cache" step.
func (s *Store) trackNodeFile(id, name string) {
	if id == "" {
		return
	}
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	if rec, ok := s.nodes[id]; ok {
		rec.Files[name] = struct{}{}
	}
}

func (s *Store) untrackNodeFile(id, name string) {
	if id == "" {
		return
	}
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()
	if rec, ok := s.nodes[id]; ok {
		delete(rec.Files, name)
	}
}

func cloneNode(rec *NodeRecord) *NodeRecord {
	cp := *rec
	cp.Files = make(map[string]struct{}, len(rec.Files))
	for k := range rec.Files {
		cp.Files[k] = struct{}{}
	}
	return &cp
}
