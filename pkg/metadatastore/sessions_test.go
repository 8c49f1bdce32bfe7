package metadatastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleSessionPerUsername(t *testing.T) {
	// spec.md §8 invariant 4.
	s := newTestStore(t)
	require.NoError(t, s.BeginSession("alice"))

	err := s.BeginSession("alice")
	assert.ErrorIs(t, err, ErrSessionExists)

	// A different username is unaffected.
	require.NoError(t, s.BeginSession("bob"))

	s.EndSession("alice")
	require.NoError(t, s.BeginSession("alice"))
}

func TestBeginSessionRegistersFirstTimeUser(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.UserExists("alice"))
	require.NoError(t, s.BeginSession("alice"))
	assert.True(t, s.UserExists("alice"))
}

func TestEndSessionOnUnknownUserIsSafe(t *testing.T) {
	s := newTestStore(t)
	assert.NotPanics(t, func() { s.EndSession("nobody") })
}
