package reconcile

import (
	"sort"

	"torclean/pkg/torclean/types"
)

// OpKind distinguishes file and directory deletions.
type OpKind string

// Operation kinds.
const (
	OpFile OpKind = "file"
	OpDir  OpKind = "dir"
)

// Operation is a single planned deletion, identified by slash-relative
// path under the reconciled root.
type Operation struct {
	Path string `json:"path"`
	Kind OpKind `json:"kind"`
}

// Plan orders the result's candidates into an executable sequence: every
// file strictly before any directory, and directories deepest-first so a
// parent is only removed after all its children. The order is
// deterministic for a given result.
func Plan(r *Result) []Operation {
	plan := make([]Operation, 0, len(r.Extraneous)+len(r.EmptyDirs))

	files := make([]string, len(r.Extraneous))
	copy(files, r.Extraneous)
	sort.Strings(files)
	for _, path := range files {
		plan = append(plan, Operation{Path: path, Kind: OpFile})
	}

	dirs := make([]string, len(r.EmptyDirs))
	copy(dirs, r.EmptyDirs)
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := types.PathDepth(dirs[i]), types.PathDepth(dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})
	for _, path := range dirs {
		plan = append(plan, Operation{Path: path, Kind: OpDir})
	}

	return plan
}
