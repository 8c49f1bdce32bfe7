// Package badgerstore implements a BadgerDB-backed metadatastore.Persister.
// Unlike persist/textfile (which matches the spec-mandated flat-text
// registry.dat byte for byte), this persister also durably carries folders
// and checkpoints, resolving spec.md §9's open question about restart
// durability of those subsystems.
//
// The key namespace follows the teacher's prefixed-key convention: one
// prefix per data type, JSON-encoded values, so that a process restart can
// reload the whole registry without a range scan crossing types.
package badgerstore

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/corefs/docfs/pkg/metadatastore"
)

const (
	prefixFile   = "file:"
	prefixFolder = "folder:"
)

// Store wraps a BadgerDB handle. Callers own the Close call.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a BadgerDB database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func keyFile(name string) []byte   { return []byte(prefixFile + name) }
func keyFolder(path string) []byte { return []byte(prefixFolder + path) }

// Save writes every file record, ACL and checkpoint included, under its own
// key. Records no longer present in files are left in place; callers that
// want deletions reflected should call DeleteFile as part of the same
// operation that removed the record from the in-memory registry, rather
// than relying on a full-snapshot Save to reconcile it.
func (s *Store) Save(files []*metadatastore.FileRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, rec := range files {
			b, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("badgerstore: encode file %q: %w", rec.Name, err)
			}
			if err := txn.Set(keyFile(rec.Name), b); err != nil {
				return fmt.Errorf("badgerstore: write file %q: %w", rec.Name, err)
			}
		}
		return nil
	})
}

// Load returns every file record previously saved.
func (s *Store) Load() ([]*metadatastore.FileRecord, error) {
	var records []*metadatastore.FileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFile)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var rec metadatastore.FileRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				if rec.ACL == nil {
					rec.ACL = make(map[string]*metadatastore.ACLEntry)
				}
				if rec.Checkpoints == nil {
					rec.Checkpoints = make(map[string]*metadatastore.CheckpointRecord)
				}
				records = append(records, &rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: load files: %w", err)
	}
	return records, nil
}

// DeleteFile removes a single file's key, for use alongside the registry's
// own DeleteFile rather than waiting for the next full Save.
func (s *Store) DeleteFile(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyFile(name))
	})
}

// SaveFolders persists the folder tree. Unlike persist/textfile, a
// badgerstore-backed coordinator survives a restart without losing
// CreateFolder history.
func (s *Store) SaveFolders(folders []*metadatastore.FolderRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, f := range folders {
			b, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("badgerstore: encode folder %q: %w", f.Path, err)
			}
			if err := txn.Set(keyFolder(f.Path), b); err != nil {
				return fmt.Errorf("badgerstore: write folder %q: %w", f.Path, err)
			}
		}
		return nil
	})
}

// LoadFolders returns every folder record previously saved.
func (s *Store) LoadFolders() ([]*metadatastore.FolderRecord, error) {
	var folders []*metadatastore.FolderRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFolder)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec metadatastore.FolderRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				folders = append(folders, &rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: load folders: %w", err)
	}
	return folders, nil
}
