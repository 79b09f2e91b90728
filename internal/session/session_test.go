// ABOUTME: Tests for session token stores.
// ABOUTME: Exercises Badger (in-memory and on-disk) and the plain memory store.
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s TokenStore) {
	t.Helper()

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save("abc.def.ghi"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	require.NoError(t, s.Save("second"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", tok)

	require.NoError(t, s.Clear())
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestBadgerInMemory(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestBadgerOnDiskPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("persisted"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, &MemoryStore{})
}
