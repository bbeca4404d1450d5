package snapshot

import "sort"

// Compare computes the structural difference between two snapshots.
// File paths present only on one side become Added/Removed; paths present
// on both sides with differing recorded sizes become Resized. Directory
// changes are a derived signal: only wholly new or wholly gone directories
// are reported. The comparison is read-only and never feeds deletion.
func Compare(before, after *Snapshot) *ChangeSet {
	cs := &ChangeSet{
		Added:   make([]string, 0),
		Removed: make([]string, 0),
		Resized: make([]SizeChange, 0),
	}

	for path, newSize := range after.Files {
		oldSize, exists := before.Files[path]
		switch {
		case !exists:
			cs.Added = append(cs.Added, path)
		case oldSize != newSize:
			cs.Resized = append(cs.Resized, SizeChange{Path: path, OldSize: oldSize, NewSize: newSize})
		}
	}

	for path := range before.Files {
		if _, exists := after.Files[path]; !exists {
			cs.Removed = append(cs.Removed, path)
		}
	}

	for dir := range after.Dirs {
		if _, exists := before.Dirs[dir]; !exists {
			cs.AddedDirs = append(cs.AddedDirs, dir)
		}
	}
	for dir := range before.Dirs {
		if _, exists := after.Dirs[dir]; !exists {
			cs.RemovedDirs = append(cs.RemovedDirs, dir)
		}
	}

	// Sort for deterministic output.
	sort.Strings(cs.Added)
	sort.Strings(cs.Removed)
	sort.Slice(cs.Resized, func(i, j int) bool {
		return cs.Resized[i].Path < cs.Resized[j].Path
	})
	sort.Strings(cs.AddedDirs)
	sort.Strings(cs.RemovedDirs)

	return cs
}
