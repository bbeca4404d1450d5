package reconcile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Outcome classifies the result of one deletion attempt.
type Outcome string

// Per-operation outcomes.
const (
	// OutcomeDeleted means the entry was removed.
	OutcomeDeleted Outcome = "deleted"

	// OutcomeNotFound means the entry vanished between planning and
	// execution.
	OutcomeNotFound Outcome = "not-found"

	// OutcomePermissionDenied means the filesystem refused the removal.
	OutcomePermissionDenied Outcome = "permission-denied"

	// OutcomeNotEmpty means a directory was repopulated after planning.
	OutcomeNotEmpty Outcome = "not-empty"

	// OutcomeFailed covers any other removal error.
	OutcomeFailed Outcome = "failed"
)

// OpResult pairs an operation with its outcome.
type OpResult struct {
	Operation Operation `json:"operation"`
	Outcome   Outcome   `json:"outcome"`

	// Error holds the failure message for non-deleted outcomes.
	Error string `json:"error,omitempty"`
}

// ExecutionReport enumerates every attempted operation with its outcome.
type ExecutionReport struct {
	Results []OpResult `json:"results"`
	Deleted int        `json:"deleted"`
	Failed  int        `json:"failed"`
}

// Execute runs the plan against root. It is unconditional: confirmation is
// the caller's responsibility before invoking it. A failed entry is
// recorded and execution continues with the rest of the plan; nothing is
// rolled back.
//
// Directories are removed with the non-recursive os.Remove so that a
// directory repopulated since planning surfaces as not-empty instead of
// silently taking new content with it.
func Execute(root string, plan []Operation) *ExecutionReport {
	report := &ExecutionReport{
		Results: make([]OpResult, 0, len(plan)),
	}

	for _, op := range plan {
		target := filepath.Join(root, filepath.FromSlash(op.Path))
		err := os.Remove(target)

		res := OpResult{Operation: op, Outcome: classify(err)}
		if err != nil {
			res.Error = err.Error()
		}
		report.Results = append(report.Results, res)

		if res.Outcome == OutcomeDeleted {
			report.Deleted++
			logger.Info("deleted", "path", op.Path, "kind", op.Kind)
		} else {
			report.Failed++
			logger.Warn("delete failed", "path", op.Path, "outcome", res.Outcome, "error", res.Error)
		}
	}

	return report
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeDeleted
	case errors.Is(err, fs.ErrNotExist):
		return OutcomeNotFound
	case errors.Is(err, fs.ErrPermission):
		return OutcomePermissionDenied
	case errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST):
		return OutcomeNotEmpty
	default:
		return OutcomeFailed
	}
}
