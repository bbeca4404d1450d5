// Package output provides formatters for displaying reconciliation and
// diff reports in various output formats (pretty, plain, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// PathEntry is one file in a report, with its size where known.
type PathEntry struct {
	Path      string `json:"path" yaml:"path"`
	Size      int64  `json:"size,omitempty" yaml:"size,omitempty"`
	SizeHuman string `json:"size_human,omitempty" yaml:"size_human,omitempty"`
}

// SizeEntry is a file whose size changed between two snapshots.
type SizeEntry struct {
	Path    string `json:"path" yaml:"path"`
	OldSize int64  `json:"old_size" yaml:"old_size"`
	NewSize int64  `json:"new_size" yaml:"new_size"`
}

// OpLine is one executed deletion with its outcome.
type OpLine struct {
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReconcileSection holds the manifest-versus-disk comparison.
type ReconcileSection struct {
	// Extraneous are files on disk the descriptor does not declare.
	Extraneous []PathEntry `json:"extraneous" yaml:"extraneous"`

	// Missing are declared files absent from disk. Informational only.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`

	// EmptyDirs are directories left with no surviving content.
	EmptyDirs []string `json:"empty_dirs,omitempty" yaml:"empty_dirs,omitempty"`
}

// ChangesSection holds the difference between two directory snapshots.
type ChangesSection struct {
	Added       []PathEntry `json:"added" yaml:"added"`
	Removed     []PathEntry `json:"removed" yaml:"removed"`
	Resized     []SizeEntry `json:"resized" yaml:"resized"`
	AddedDirs   []string    `json:"added_dirs,omitempty" yaml:"added_dirs,omitempty"`
	RemovedDirs []string    `json:"removed_dirs,omitempty" yaml:"removed_dirs,omitempty"`
}

// ExecutionSection holds the per-operation results of an executed plan.
type ExecutionSection struct {
	Results []OpLine `json:"results" yaml:"results"`
	Deleted int      `json:"deleted" yaml:"deleted"`
	Failed  int      `json:"failed" yaml:"failed"`
}

// WalkStats contains statistics about a directory walk.
type WalkStats struct {
	FilesScanned int           `json:"files_scanned" yaml:"files_scanned"`
	DirsScanned  int           `json:"dirs_scanned" yaml:"dirs_scanned"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Report contains the complete output data for formatting. Exactly one of
// Reconcile and Changes is set, depending on the command that produced it;
// Execution is present only after a confirmed clean run.
type Report struct {
	// Mode identifies the producing command, "clean" or "diff".
	Mode string `json:"mode" yaml:"mode"`

	// Root is the directory the report describes.
	Root string `json:"root" yaml:"root"`

	// Descriptor is the torrent file driving a clean run.
	Descriptor string `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`

	// DryRun marks a clean run that planned but never deleted.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	Reconcile *ReconcileSection `json:"reconcile,omitempty" yaml:"reconcile,omitempty"`
	Changes   *ChangesSection   `json:"changes,omitempty" yaml:"changes,omitempty"`
	Execution *ExecutionSection `json:"execution,omitempty" yaml:"execution,omitempty"`

	Stats WalkStats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal problems hit during the walk.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ReclaimableSize returns the total size of extraneous files.
func (r *Report) ReclaimableSize() int64 {
	if r.Reconcile == nil {
		return 0
	}
	var total int64
	for _, f := range r.Reconcile.Extraneous {
		total += f.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted report to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
