package metadatastore

import "time"

// AddCheckpoint indexes a new checkpoint tag for name. The node-side byte
// copy is the caller's responsibility (spec.md §4.2 CHECKPOINT); this only
// maintains the coordinator's index. Tags are unique per file.
func (s *Store) AddCheckpoint(name, tag, creator string, size int64) error {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	rec, ok := s.files[name]
	if !ok {
		return ErrFileNotFound
	}
	if _, exists := rec.Checkpoints[tag]; exists {
		return ErrCheckpointExists
	}
	rec.Checkpoints[tag] = &CheckpointRecord{
		Tag:       tag,
		Creator:   creator,
		CreatedAt: time.Now(),
		Size:      size,
	}
	return nil
}

// GetCheckpoint returns the indexed record for (name, tag).
func (s *Store) GetCheckpoint(name, tag string) (*CheckpointRecord, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()

	rec, ok := s.files[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	cp, ok := rec.Checkpoints[tag]
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	c := *cp
	return &c, nil
}

// ListCheckpoints returns every checkpoint indexed for name.
func (s *Store) ListCheckpoints(name string) ([]*CheckpointRecord, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()

	rec, ok := s.files[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	out := make([]*CheckpointRecord, 0, len(rec.Checkpoints))
	for _, cp := range rec.Checkpoints {
		c := *cp
		out = append(out, &c)
	}
	return out, nil
}
