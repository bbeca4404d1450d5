package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapWith(files map[string]int64, dirs ...string) *Snapshot {
	s := &Snapshot{
		Root:  "/x",
		Files: files,
		Dirs:  make(map[string]struct{}, len(dirs)),
	}
	for _, d := range dirs {
		s.Dirs[d] = struct{}{}
	}
	return s
}

func TestCompare_ClassifiesFileChanges(t *testing.T) {
	before := snapWith(map[string]int64{
		"kept.txt":    10,
		"removed.txt": 20,
		"grown.txt":   5,
	})
	after := snapWith(map[string]int64{
		"kept.txt":  10,
		"added.txt": 1,
		"grown.txt": 50,
	})

	cs := Compare(before, after)

	assert.Equal(t, []string{"added.txt"}, cs.Added)
	assert.Equal(t, []string{"removed.txt"}, cs.Removed)
	assert.Equal(t, []SizeChange{{Path: "grown.txt", OldSize: 5, NewSize: 50}}, cs.Resized)
	assert.True(t, cs.HasChanges())
}

func TestCompare_DirChanges(t *testing.T) {
	before := snapWith(map[string]int64{}, "a", "gone")
	after := snapWith(map[string]int64{}, "a", "fresh")

	cs := Compare(before, after)

	assert.Equal(t, []string{"fresh"}, cs.AddedDirs)
	assert.Equal(t, []string{"gone"}, cs.RemovedDirs)
}

func TestCompare_IdenticalSnapshots(t *testing.T) {
	files := map[string]int64{"a": 1, "b/c": 2}
	cs := Compare(snapWith(files, "b"), snapWith(files, "b"))

	assert.False(t, cs.HasChanges())
	assert.Empty(t, cs.Added)
	assert.Empty(t, cs.Removed)
	assert.Empty(t, cs.Resized)
}

func TestCompare_SortedOutput(t *testing.T) {
	before := snapWith(map[string]int64{})
	after := snapWith(map[string]int64{"z": 1, "a": 1, "m": 1})

	cs := Compare(before, after)
	assert.Equal(t, []string{"a", "m", "z"}, cs.Added)
}

func TestCompare_SameSizeIsNoChange(t *testing.T) {
	before := snapWith(map[string]int64{"f": 7})
	after := snapWith(map[string]int64{"f": 7})

	cs := Compare(before, after)
	assert.Empty(t, cs.Resized)
}
