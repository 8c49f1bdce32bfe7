// Package storagenode implements a storage node: the per-node file layout
// (live content, sidecar backups, checkpoints), the sentence/word edit
// sub-protocol, and the control channel handled as a long-lived client
// connection to the coordinator (spec.md §4.6-§4.9).
package storagenode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corefs/docfs/internal/logger"
)

var (
	// ErrFileNotFound is returned by fileStore operations on a name with no
	// live content.
	ErrFileNotFound = errors.New("storagenode: file not found")
	// ErrFileExists is returned by Create on a name already present.
	ErrFileExists = errors.New("storagenode: file exists")
	// ErrNoBackup is returned by Undo when no sidecar backup exists.
	ErrNoBackup = errors.New("storagenode: no backup to restore")
	// ErrCheckpointNotFound is returned by Revert for an unknown tag.
	ErrCheckpointNotFound = errors.New("storagenode: checkpoint not found")
)

// fileStore owns the three directory trees a node writes to: live storage,
// the sidecar-backup tree used by undo, and the checkpoint tree (spec.md
// §4.6, §6 "Persisted state layout").
type fileStore struct {
	storageDir    string
	backupDir     string
	checkpointDir string

	// cold, when non-nil, mirrors every checkpoint to S3 and serves as a
	// fallback source for Revert if the local checkpoint copy is gone.
	cold *coldTier
}

func newFileStore(storageDir, backupDir, checkpointDir string, cold *coldTier) (*fileStore, error) {
	for _, dir := range []string{storageDir, backupDir, checkpointDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("storagenode: create directory %s: %w", dir, err)
		}
	}
	return &fileStore{storageDir: storageDir, backupDir: backupDir, checkpointDir: checkpointDir, cold: cold}, nil
}

func (fs *fileStore) livePath(name string) string      { return filepath.Join(fs.storageDir, name) }
func (fs *fileStore) backupPath(name string) string    { return filepath.Join(fs.backupDir, name) }
func (fs *fileStore) editSidecar(name string) string    { return fs.backupPath(name) + ".backup" }
func (fs *fileStore) checkpointPath(name, tag string) string {
	return filepath.Join(fs.checkpointDir, name+"."+tag)
}

// Create makes an empty file in both the storage and backup trees.
func (fs *fileStore) Create(name string) error {
	if _, err := os.Stat(fs.livePath(name)); err == nil {
		return ErrFileExists
	}
	if err := writeAtomic(fs.livePath(name), nil); err != nil {
		return err
	}
	return writeAtomic(fs.backupPath(name), nil)
}

// Delete removes the live copy only; the backup is retained so coordinator
// read-fallback can still serve the file's last known content.
func (fs *fileStore) Delete(name string) error {
	err := os.Remove(fs.livePath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read returns the live content of name.
func (fs *fileStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(fs.livePath(name))
	if os.IsNotExist(err) {
		return nil, ErrFileNotFound
	}
	return data, err
}

// Exists reports whether name has live content.
func (fs *fileStore) Exists(name string) bool {
	_, err := os.Stat(fs.livePath(name))
	return err == nil
}

// Write snapshots the current live content to the edit sidecar, then
// atomically replaces the live file with content. Called on ETIRW (spec.md
// §4.7 step 4), so partial edits never reach disk, and by Revert.
func (fs *fileStore) Write(name string, content []byte) error {
	old, err := os.ReadFile(fs.livePath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := writeAtomic(fs.editSidecar(name), old); err != nil {
		return err
	}
	if err := writeAtomic(fs.livePath(name), content); err != nil {
		return err
	}
	return writeAtomic(fs.backupPath(name), content)
}

// Undo swaps live and edit-sidecar content: the current live content moves
// to a temp sidecar, the sidecar becomes live, and the temp sidecar becomes
// the new edit sidecar (spec.md §4.7 "UNDO").
func (fs *fileStore) Undo(name string) error {
	sidecar := fs.editSidecar(name)
	backup, err := os.ReadFile(sidecar)
	if os.IsNotExist(err) {
		return ErrNoBackup
	}
	if err != nil {
		return err
	}

	live, err := os.ReadFile(fs.livePath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := writeAtomic(fs.livePath(name), backup); err != nil {
		return err
	}
	if err := writeAtomic(sidecar, live); err != nil {
		return err
	}
	return writeAtomic(fs.backupPath(name), backup)
}

// Move serves MOVE after the coordinator has validated write permission and
// updated its own folder attribute. It returns ErrFileNotFound when name has
// no live content and otherwise changes nothing on disk: no live, backup or
// checkpoint file is renamed or moved.
func (fs *fileStore) Move(name string) error {
	// Folders are coordinator-only metadata (spec.md §4.2); a node's own
	// layout is flat by name, so MOVE has no on-disk effect beyond the
	// coordinator-issued rename target already matching `name`. Kept as an
	// explicit no-op method (rather than omitted) so the control-channel
	// dispatch table documents every opcode it accepts.
	if !fs.Exists(name) {
		return ErrFileNotFound
	}
	return nil
}

// Checkpoint copies the live content to storage/<id>/checkpoints/<name>.<tag>.
func (fs *fileStore) Checkpoint(name, tag string) (int64, error) {
	content, err := fs.Read(name)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(fs.checkpointPath(name, tag), content); err != nil {
		return 0, err
	}
	if fs.cold != nil {
		if err := fs.cold.Put(context.Background(), name, tag, content); err != nil {
			logger.Warn("checkpoint cold-tier mirror failed", "file", name, "tag", tag, "error", err)
		}
	}
	return int64(len(content)), nil
}

// Revert overwrites the live file from its checkpoint copy, falling back to
// the cold tier if the local checkpoint copy is missing and cold storage is
// configured.
func (fs *fileStore) Revert(name, tag string) error {
	content, err := os.ReadFile(fs.checkpointPath(name, tag))
	switch {
	case os.IsNotExist(err) && fs.cold != nil:
		content, err = fs.cold.Get(context.Background(), name, tag)
		if err != nil {
			return ErrCheckpointNotFound
		}
	case os.IsNotExist(err):
		return ErrCheckpointNotFound
	case err != nil:
		return err
	}
	return fs.Write(name, content)
}

// listDir returns the base names of every regular, non-temp file directly
// under dir (used to enumerate a node's known files for REGISTER_NODE).
func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".tmp" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// writeAtomic writes data to a temp file beside path and renames it into
// place, so a crash mid-write never leaves a torn file (spec.md §4.6, §5
// "temp-file+rename").
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
