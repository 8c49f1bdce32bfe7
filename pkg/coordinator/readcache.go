package coordinator

import (
	"os"
	"path/filepath"
)

// readCache snapshots node-served content under the coordinator's own
// cache/ and backups/<node_id>/ trees, used by READ/STREAM's fallback path
// when a node is FAILED (spec.md §4.2 READ, §6 "Persisted state layout").
// It is deliberately dumb: a cache hit is any prior write. Entries never
// expire; a later write replaces one, and invalidate removes it.
type readCache struct {
	cacheDir  string
	backupDir string
}

func newReadCache(cacheDir, backupDir string) *readCache {
	return &readCache{cacheDir: cacheDir, backupDir: backupDir}
}

func (c *readCache) cachePath(name string) string { return filepath.Join(c.cacheDir, name) }
func (c *readCache) backupPath(nodeID, name string) string {
	return filepath.Join(c.backupDir, nodeID, name)
}

// getCached returns the coordinator's cached copy of name, if any.
func (c *readCache) getCached(name string) ([]byte, bool) {
	data, err := os.ReadFile(c.cachePath(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// putCached stores content under the cache tree, e.g. after a successful
// backup-fallback READ, so a repeat READ need not re-touch the backup file.
func (c *readCache) putCached(name string, content []byte) {
	_ = os.MkdirAll(c.cacheDir, 0755)
	_ = os.WriteFile(c.cachePath(name), content, 0644)
}

// invalidate drops the cached copy of name. handleDelete calls it when the
// file is deleted.
func (c *readCache) invalidate(name string) {
	_ = os.Remove(c.cachePath(name))
}

// getBackup returns the coordinator-side backup copy of name last mirrored
// from nodeID, if any.
func (c *readCache) getBackup(nodeID, name string) ([]byte, bool) {
	data, err := os.ReadFile(c.backupPath(nodeID, name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// putBackup writes the coordinator-side backup copy of name under nodeID.
// Its only caller is handleCreate, which writes an empty copy when the file
// is created; nothing refreshes the copy with the file's later content.
func (c *readCache) putBackup(nodeID, name string, content []byte) {
	dir := filepath.Join(c.backupDir, nodeID)
	_ = os.MkdirAll(dir, 0755)
	_ = os.WriteFile(c.backupPath(nodeID, name), content, 0644)
}
