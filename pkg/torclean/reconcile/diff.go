// Package reconcile compares a torrent manifest against a walked directory
// tree, plans the deletions that bring disk back in line with the
// manifest, and executes them. Planning and execution are split so the
// CLI can interpose a confirmation prompt between them.
package reconcile

import (
	"sort"
	"strings"

	"torclean/pkg/torclean/logging"
	"torclean/pkg/torclean/metainfo"
	"torclean/pkg/torclean/snapshot"
	"torclean/pkg/torclean/types"
)

var logger = logging.Get("reconcile")

// Options controls diff policy.
type Options struct {
	// Surface includes undeclared files sitting directly inside the
	// torrent's named directory as deletion candidates. When false such
	// files are left untouched; many clients tolerate loose files beside
	// the declared subdirectory structure.
	Surface bool

	// EmptyDir adds directories that would hold zero files after the
	// extraneous removals (including ones already empty) as deletion
	// candidates. When false directories are never deleted.
	EmptyDir bool
}

// Result is the manifest-vs-disk difference. Extraneous and EmptyDirs are
// the deletion candidate sets; Missing is reported for visibility only and
// never feeds deletion.
type Result struct {
	// Extraneous holds files present on disk but absent from the manifest.
	Extraneous []string `json:"extraneous"`

	// Missing holds files the manifest declares but the directory lacks.
	Missing []string `json:"missing"`

	// EmptyDirs holds directories left without files once the extraneous
	// set is removed. Populated only with Options.EmptyDir.
	EmptyDirs []string `json:"empty_dirs,omitempty"`
}

// HasCandidates reports whether the result contains anything to delete.
func (r *Result) HasCandidates() bool {
	return len(r.Extraneous) > 0 || len(r.EmptyDirs) > 0
}

// Diff computes the difference between the manifest's declared path set
// and the snapshot's file set. Paths outside the torrent's named directory
// are never candidates: the torrent does not own them.
func Diff(m *metainfo.Metainfo, snap *snapshot.Snapshot, opts Options) *Result {
	manifest := m.PathSet()
	name := m.Info.Name

	result := &Result{
		Extraneous: make([]string, 0),
		Missing:    make([]string, 0),
	}

	survivors := make(map[string]struct{}, len(snap.Files))
	for path := range snap.Files {
		if _, declared := manifest[path]; declared {
			survivors[path] = struct{}{}
			continue
		}
		if types.TopSegment(path) != name {
			// Sibling of the torrent directory; out of scope.
			survivors[path] = struct{}{}
			continue
		}
		if _, protected := snap.Protected[path]; protected {
			survivors[path] = struct{}{}
			continue
		}
		if !opts.Surface && isSurface(path, name) {
			survivors[path] = struct{}{}
			continue
		}
		result.Extraneous = append(result.Extraneous, path)
	}

	for path := range manifest {
		if _, onDisk := snap.Files[path]; !onDisk {
			result.Missing = append(result.Missing, path)
		}
	}

	if opts.EmptyDir {
		result.EmptyDirs = emptyDirs(snap, survivors, name)
	}

	sort.Strings(result.Extraneous)
	sort.Strings(result.Missing)
	sort.Strings(result.EmptyDirs)

	logger.Debug("diff complete",
		"extraneous", len(result.Extraneous),
		"missing", len(result.Missing),
		"empty_dirs", len(result.EmptyDirs))
	return result
}

// isSurface reports whether path is a file directly inside the torrent's
// named directory, outside any declared subdirectory ("name/x", depth one).
func isSurface(path, name string) bool {
	rest, ok := strings.CutPrefix(path, name+"/")
	if !ok {
		return false
	}
	return !strings.Contains(rest, "/")
}

// emptyDirs returns the directories at or below the torrent's named
// directory that hold no surviving files. Directories that were already
// empty before this run count too.
func emptyDirs(snap *snapshot.Snapshot, survivors map[string]struct{}, name string) []string {
	nonEmpty := make(map[string]struct{})
	for path := range survivors {
		for _, dir := range types.ParentDirs(path) {
			nonEmpty[dir] = struct{}{}
		}
	}

	var dirs []string
	for dir := range snap.Dirs {
		if dir != name && !strings.HasPrefix(dir, name+"/") {
			continue
		}
		if _, ok := nonEmpty[dir]; !ok {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
