//go:build integration

package pgstore_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/corefs/docfs/pkg/metadatastore"
	"github.com/corefs/docfs/pkg/metadatastore/persist/pgstore"
)

func startTestStore(t *testing.T) *pgstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("docfs_test"),
		postgres.WithUsername("docfs_test"),
		postgres.WithPassword("docfs_test"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)

	s, err := pgstore.Open(pgstore.Config{
		Host: host, Port: port, Database: "docfs_test", User: "docfs_test", Password: "docfs_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := startTestStore(t)
	now := time.Now().Truncate(time.Second).UTC()

	records := []*metadatastore.FileRecord{
		{
			Name: "report", Owner: "alice", NodeID: "node1", Folder: "docs",
			CreatedAt: now, ModifiedAt: now, AccessedAt: now,
			ACL: map[string]*metadatastore.ACLEntry{
				"bob": {Username: "bob", CanRead: true, CanWrite: false},
			},
			Checkpoints: map[string]*metadatastore.CheckpointRecord{
				"v1": {Tag: "v1", Creator: "alice", CreatedAt: now, Size: 10},
			},
		},
	}
	require.NoError(t, s.Save(records))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "alice", loaded[0].Owner)
	assert.True(t, loaded[0].ACL["bob"].CanRead)
	assert.Contains(t, loaded[0].Checkpoints, "v1")
}

func TestFolderRoundTrip(t *testing.T) {
	s := startTestStore(t)
	require.NoError(t, s.SaveFolders([]*metadatastore.FolderRecord{{Path: "docs", Owner: "alice"}}))

	folders, err := s.LoadFolders()
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "docs", folders[0].Path)
}
