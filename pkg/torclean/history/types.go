// Package history journals torclean runs to the filesystem so past
// reconciliations and diffs can be reviewed.
package history

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpClean represents a reconcile/delete run.
	OpClean OperationType = "clean"
	// OpDiff represents a snapshot comparison run.
	OpDiff OperationType = "diff"
)

// Entry represents a single journal entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Files     []FileRecord  `json:"files"`
	Summary   Summary       `json:"summary"`
}

// FileRecord represents one file touched or reported by an operation.
type FileRecord struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Outcome   string    `json:"outcome,omitempty"`    // per-path result for clean runs
	DeletedAt time.Time `json:"deleted_at,omitempty"` // set when the file was deleted
}

// Summary contains operation totals.
type Summary struct {
	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
	Deleted    int64 `json:"deleted,omitempty"`
	Failed     int64 `json:"failed,omitempty"`
}
