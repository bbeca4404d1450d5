package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torclean/pkg/torclean/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Root: "/data/seeds",
		Files: map[string]int64{
			"show/a.txt":     10,
			"show/sub/b.txt": 20,
		},
		Dirs: map[string]struct{}{
			"show":     {},
			"show/sub": {},
		},
		Protected: map[string]struct{}{
			"show/a.txt": {},
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("nightly", sampleSnapshot()))

	loaded, err := s.Load("nightly")
	require.NoError(t, err)

	assert.Equal(t, "/data/seeds", loaded.Root)
	assert.Equal(t, sampleSnapshot().Files, loaded.Files)
	assert.Equal(t, sampleSnapshot().Dirs, loaded.Dirs)
	assert.Equal(t, sampleSnapshot().Protected, loaded.Protected)
}

func TestStore_LoadUnknownName(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveReplacesPrevious(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("n", sampleSnapshot()))

	smaller := &snapshot.Snapshot{
		Root:  "/data/other",
		Files: map[string]int64{"only.txt": 1},
		Dirs:  map[string]struct{}{},
	}
	require.NoError(t, s.Save("n", smaller))

	loaded, err := s.Load("n")
	require.NoError(t, err)
	assert.Equal(t, "/data/other", loaded.Root)
	assert.Equal(t, map[string]int64{"only.txt": 1}, loaded.Files)
	assert.NotContains(t, loaded.Files, "show/a.txt")
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)

	infos, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, s.Save("beta", sampleSnapshot()))
	require.NoError(t, s.Save("alpha", sampleSnapshot()))

	infos, err = s.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Sorted by name.
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "beta", infos[1].Name)
	assert.Equal(t, 2, infos[0].Files)
	assert.Equal(t, int64(30), infos[0].TotalSize)
	assert.Equal(t, "/data/seeds", infos[0].Root)
	assert.False(t, infos[0].Created.IsZero())
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("doomed", sampleSnapshot()))
	require.NoError(t, s.Delete("doomed"))

	_, err := s.Load("doomed")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete("doomed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"", "has\x00sep"} {
		assert.ErrorIs(t, s.Save(name, sampleSnapshot()), ErrInvalidName, "name %q", name)
		_, err := s.Load(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		assert.ErrorIs(t, s.Delete(name), ErrInvalidName, "name %q", name)
	}
}

func TestKeyScheme(t *testing.T) {
	key := makeKey("snap", "dir/file.txt")
	name, rel := parseKey(key)
	assert.Equal(t, "snap", name)
	assert.Equal(t, "dir/file.txt", rel)

	metaName, metaRel := parseKey(makeKey("snap", ""))
	assert.Equal(t, "snap", metaName)
	assert.Empty(t, metaRel)

	assert.Equal(t, []byte("snap\x00"), makePrefix("snap"))
}
