// Package snapshot captures a directory tree as a comparable value: the
// set of regular files (with sizes) and directories below a root, plus any
// non-fatal warnings gathered along the way. Snapshots feed both the
// manifest reconciler and the standalone diff mode.
package snapshot

import "sort"

// Warning records a non-fatal problem encountered during a walk, such as a
// permission-denied entry or a symlink cycle. The walk continues past it;
// the partial snapshot remains usable.
type Warning struct {
	// Path is the entry the warning concerns, relative to the root where
	// possible.
	Path string `json:"path"`

	// Message describes what went wrong.
	Message string `json:"message"`
}

// Snapshot is the walked representation of a directory tree. All paths are
// slash-separated and relative to Root; the root itself is not listed.
type Snapshot struct {
	// Root is the absolute path the snapshot was taken from.
	Root string `json:"root"`

	// Files maps each regular file's relative path to its size in bytes.
	Files map[string]int64 `json:"files"`

	// Dirs holds every directory's relative path.
	Dirs map[string]struct{} `json:"dirs"`

	// Protected marks files matched by a protect pattern. Protected files
	// are never considered extraneous downstream.
	Protected map[string]struct{} `json:"protected,omitempty"`

	// Warnings holds non-fatal problems from the walk.
	Warnings []Warning `json:"warnings,omitempty"`
}

// FileCount returns the number of files in the snapshot.
func (s *Snapshot) FileCount() int { return len(s.Files) }

// TotalSize returns the sum of all file sizes in the snapshot.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, size := range s.Files {
		total += size
	}
	return total
}

// SortedFiles returns the snapshot's file paths in bytewise order.
func (s *Snapshot) SortedFiles() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SortedDirs returns the snapshot's directory paths in bytewise order.
func (s *Snapshot) SortedDirs() []string {
	dirs := make([]string, 0, len(s.Dirs))
	for d := range s.Dirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// SizeChange records a file present in both snapshots whose recorded size
// differs.
type SizeChange struct {
	Path    string `json:"path"`
	OldSize int64  `json:"old_size"`
	NewSize int64  `json:"new_size"`
}

// ChangeSet is the structural difference between two snapshots. File paths
// are the primary signal; directory changes are derived and only reported
// when a directory is wholly new or wholly gone.
type ChangeSet struct {
	// Added holds file paths present only in the "after" snapshot.
	Added []string `json:"added"`

	// Removed holds file paths present only in the "before" snapshot.
	Removed []string `json:"removed"`

	// Resized holds files present in both with differing sizes.
	Resized []SizeChange `json:"resized"`

	// AddedDirs and RemovedDirs hold directories that exist in only one
	// snapshot.
	AddedDirs   []string `json:"added_dirs,omitempty"`
	RemovedDirs []string `json:"removed_dirs,omitempty"`
}

// HasChanges reports whether the change set contains any difference.
func (c *ChangeSet) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Resized) > 0 ||
		len(c.AddedDirs) > 0 || len(c.RemovedDirs) > 0
}
