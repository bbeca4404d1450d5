package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"torclean/pkg/torclean/history"
	"torclean/pkg/torclean/output"
	"torclean/pkg/torclean/snapshot"
	"torclean/pkg/torclean/types"
)

var diffCmd = &cobra.Command{
	Use:   "diff [<before>] <after>",
	Short: "Compare two directory trees",
	Long: `Compare two directory trees and report added, removed and resized
files. Nothing is ever deleted; the comparison is read-only.

The "before" side is either a directory or, with --snapshot, a snapshot
previously stored with 'torclean snapshot save'.

Examples:
  torclean diff ./backup ./live            # Compare two directories
  torclean diff --snapshot nightly ./live  # Compare against a stored snapshot`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

var diffSnapshotName string

func init() {
	diffCmd.Flags().StringVar(&diffSnapshotName, "snapshot", "", "use a stored snapshot as the before side")
	rootCmd.AddCommand(diffCmd)
}

// runDiff compares a before tree (directory or stored snapshot) against an
// after directory.
func runDiff(_ *cobra.Command, args []string) error {
	var before *snapshot.Snapshot
	var afterArg string
	var err error

	walkOpts := snapshot.WalkOptions{
		FollowSymlinks: viper.GetBool("follow_symlinks"),
	}

	switch {
	case diffSnapshotName != "":
		if len(args) != 1 {
			return usageErrorf("with --snapshot, expected a single <after> argument")
		}
		before, err = loadStoredSnapshot(diffSnapshotName)
		if err != nil {
			return err
		}
		afterArg = args[0]
	case len(args) == 2:
		beforeDir, err := resolveDir(args[0])
		if err != nil {
			return err
		}
		before, err = snapshot.Walk(beforeDir, walkOpts)
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", beforeDir, err)
		}
		afterArg = args[1]
	default:
		return usageErrorf("expected <before> and <after> directories, or --snapshot <name> and <after>")
	}

	afterDir, err := resolveDir(afterArg)
	if err != nil {
		return err
	}

	start := time.Now()
	after, err := snapshot.Walk(afterDir, walkOpts)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", afterDir, err)
	}
	elapsed := time.Since(start)

	changes := snapshot.Compare(before, after)
	report := buildDiffReport(before, after, changes, elapsed)

	if err := logDiffHistory(changes, before, after); err != nil {
		printVerbose("Failed to record history: %v", err)
	}

	return printReport(report)
}

// buildDiffReport converts a change set into the output report.
func buildDiffReport(before, after *snapshot.Snapshot, changes *snapshot.ChangeSet, elapsed time.Duration) *output.Report {
	section := &output.ChangesSection{
		Added:       pathEntries(changes.Added, after.Files),
		Removed:     pathEntries(changes.Removed, before.Files),
		Resized:     make([]output.SizeEntry, 0, len(changes.Resized)),
		AddedDirs:   changes.AddedDirs,
		RemovedDirs: changes.RemovedDirs,
	}
	for _, sc := range changes.Resized {
		section.Resized = append(section.Resized, output.SizeEntry{
			Path:    sc.Path,
			OldSize: sc.OldSize,
			NewSize: sc.NewSize,
		})
	}

	return &output.Report{
		Mode:    "diff",
		Root:    after.Root,
		Changes: section,
		Stats: output.WalkStats{
			FilesScanned: len(after.Files),
			DirsScanned:  len(after.Dirs),
			Duration:     elapsed,
		},
		Warnings: append(warningStrings(before), warningStrings(after)...),
	}
}

// pathEntries maps paths to output entries with sizes from the given set.
func pathEntries(paths []string, sizes map[string]int64) []output.PathEntry {
	entries := make([]output.PathEntry, 0, len(paths))
	for _, p := range paths {
		size := sizes[p]
		entries = append(entries, output.PathEntry{
			Path:      p,
			Size:      size,
			SizeHuman: types.FormatSize(size),
		})
	}
	return entries
}

// logDiffHistory records the comparison in the history journal.
func logDiffHistory(changes *snapshot.ChangeSet, before, after *snapshot.Snapshot) error {
	if !viper.GetBool("history.enabled") {
		return nil
	}

	journal, err := getJournal()
	if err != nil {
		return err
	}
	if err := journal.EnsureDir(); err != nil {
		return err
	}

	records := make([]history.FileRecord, 0, len(changes.Added)+len(changes.Removed))
	for _, p := range changes.Added {
		records = append(records, history.FileRecord{Path: p, Size: after.Files[p]})
	}
	for _, p := range changes.Removed {
		records = append(records, history.FileRecord{Path: p, Size: before.Files[p]})
	}

	_, err = journal.LogDiff(records)
	return err
}
