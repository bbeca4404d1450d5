package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"torclean/pkg/torclean/logging"
)

// logger is the package-level logger for walk operations.
var logger = logging.Get("snapshot")

// ErrNotDirectory indicates the walk root exists but is not a directory.
var ErrNotDirectory = errors.New("snapshot: root is not a directory")

// WalkOptions configures a directory walk.
type WalkOptions struct {
	// FollowSymlinks descends into symlinked directories. Each canonical
	// path is visited at most once; a revisit records a cycle warning for
	// that branch instead of recursing forever.
	FollowSymlinks bool

	// Protect contains glob patterns (matched against slash-relative
	// paths) marking files the reconciler must leave untouched.
	Protect []string
}

// Walk captures the directory tree rooted at root. A missing or non-directory
// root is fatal; per-entry failures are recorded as warnings and the walk
// continues, so a partial snapshot is still usable.
func Walk(root string, opts WalkOptions) (*Snapshot, error) {
	absRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	protect, err := compileProtect(opts.Protect)
	if err != nil {
		return nil, err
	}

	w := &walker{
		root:    absRoot,
		protect: protect,
		snap: &Snapshot{
			Root:  absRoot,
			Files: make(map[string]int64),
			Dirs:  make(map[string]struct{}),
		},
		visited: make(map[string]struct{}),
	}

	conf := fastwalk.Config{
		Follow: opts.FollowSymlinks,
	}
	if err := fastwalk.Walk(&conf, absRoot, w.callback); err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	logger.Debug("walk complete",
		"root", absRoot,
		"files", len(w.snap.Files),
		"dirs", len(w.snap.Dirs),
		"warnings", len(w.snap.Warnings))
	return w.snap, nil
}

// validateRoot resolves the root path to absolute and verifies it is an
// existing directory.
func validateRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}
	return absRoot, nil
}

func compileProtect(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid protect pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// walker holds the mutable walk state. fastwalk invokes the callback from
// multiple goroutines, so every map is guarded.
type walker struct {
	root    string
	protect []glob.Glob

	mu   sync.Mutex
	snap *Snapshot

	// visited holds canonical paths of entered directories for symlink
	// cycle detection.
	visitedMu sync.Mutex
	visited   map[string]struct{}
}

func (w *walker) callback(path string, d fs.DirEntry, err error) error {
	if err != nil {
		w.addWarning(w.relOrRaw(path), err.Error())
		return nil
	}

	rel, relErr := filepath.Rel(w.root, path)
	if relErr != nil {
		w.addWarning(path, relErr.Error())
		return nil
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		// The root itself is not part of the tree.
		return w.enterDir(path, "")
	}

	switch {
	case d.IsDir():
		return w.enterDir(path, rel)
	case d.Type().IsRegular():
		w.addFile(rel, d)
	}
	return nil
}

// enterDir records a directory and guards against symlink cycles by
// canonical path. rel is empty for the root.
func (w *walker) enterDir(path, rel string) error {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.addWarning(rel, err.Error())
		return filepath.SkipDir
	}

	w.visitedMu.Lock()
	_, seen := w.visited[canonical]
	if !seen {
		w.visited[canonical] = struct{}{}
	}
	w.visitedMu.Unlock()

	if seen {
		w.addWarning(rel, fmt.Sprintf("symlink cycle: %s already visited", canonical))
		return filepath.SkipDir
	}

	if rel != "" {
		w.mu.Lock()
		w.snap.Dirs[rel] = struct{}{}
		w.mu.Unlock()
	}
	return nil
}

func (w *walker) addFile(rel string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		w.addWarning(rel, err.Error())
		return
	}

	protected := false
	for _, g := range w.protect {
		if g.Match(rel) {
			protected = true
			break
		}
	}

	w.mu.Lock()
	w.snap.Files[rel] = info.Size()
	if protected {
		if w.snap.Protected == nil {
			w.snap.Protected = make(map[string]struct{})
		}
		w.snap.Protected[rel] = struct{}{}
	}
	w.mu.Unlock()
}

func (w *walker) addWarning(path, msg string) {
	w.mu.Lock()
	w.snap.Warnings = append(w.snap.Warnings, Warning{Path: path, Message: msg})
	w.mu.Unlock()
}

// relOrRaw best-efforts a relative path for warning messages.
func (w *walker) relOrRaw(path string) string {
	if rel, err := filepath.Rel(w.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
