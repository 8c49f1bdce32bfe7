package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAccessRejectsOwnFile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	_, err = s.RequestAccess("report", "alice", AccessRead)
	assert.ErrorIs(t, err, ErrCannotRequestOwnFile)
}

func TestRequestAccessOnlyOnePending(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	_, err = s.RequestAccess("report", "bob", AccessRead)
	require.NoError(t, err)

	_, err = s.RequestAccess("report", "bob", AccessWrite)
	assert.ErrorIs(t, err, ErrRequestExists)
}

func TestResolveRequestApprovalGrantsACL(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	req, err := s.RequestAccess("report", "bob", AccessWrite)
	require.NoError(t, err)

	resolved, err := s.ResolveRequest(req.ID, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, resolved.Status)

	rec, _ := s.GetFile("report")
	assert.True(t, rec.ACL["bob"].CanWrite)
}

func TestResolveRequestRequiresOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)
	req, err := s.RequestAccess("report", "bob", AccessRead)
	require.NoError(t, err)

	_, err = s.ResolveRequest(req.ID, "carol", true)
	assert.ErrorIs(t, err, ErrDenied)
}

func TestViewRequestsEmptyIsNoRequests(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateFile("report", "alice", "node1", "")
	require.NoError(t, err)

	_, err = s.ViewRequests("report", "alice")
	assert.ErrorIs(t, err, ErrNoRequests)
}
