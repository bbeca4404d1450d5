package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"torclean/pkg/torclean/config"
	"torclean/pkg/torclean/history"
	"torclean/pkg/torclean/metainfo"
	"torclean/pkg/torclean/output"
	"torclean/pkg/torclean/reconcile"
	"torclean/pkg/torclean/snapshot"
	"torclean/pkg/torclean/types"
)

// runClean is the root command handler: reconcile a directory against a
// torrent descriptor and delete what the descriptor does not declare.
func runClean(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if len(args) != 2 {
		return usageErrorf("expected <torrent> and <dir> arguments, got %d", len(args))
	}

	torrentPath, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand torrent path: %w", err)
	}
	root, err := resolveDir(args[1])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(torrentPath)
	if err != nil {
		return fmt.Errorf("failed to read descriptor: %w", err)
	}
	meta, err := metainfo.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid descriptor %s: %w", torrentPath, err)
	}

	printVerbose("Descriptor %s declares %d files under %q",
		torrentPath, len(meta.Info.Files), meta.Info.Name)

	start := time.Now()
	snap, err := snapshot.Walk(root, snapshot.WalkOptions{
		FollowSymlinks: viper.GetBool("follow_symlinks"),
		Protect:        viper.GetStringSlice("protect"),
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	elapsed := time.Since(start)

	result := reconcile.Diff(meta, snap, reconcile.Options{
		Surface:  viper.GetBool("surface"),
		EmptyDir: viper.GetBool("empty_dirs"),
	})

	dryRun := viper.GetBool("dry_run")
	report := buildCleanReport(torrentPath, snap, result, elapsed, dryRun)

	if !result.HasCandidates() || dryRun {
		return printReport(report)
	}

	plan := reconcile.Plan(result)

	if !viper.GetBool("no_confirm") {
		if err := printReport(report); err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete %d entries? [y/N] ", len(plan))) {
			printInfo("Aborted, nothing deleted.")
			return nil
		}
	}

	exec := reconcile.Execute(root, plan)
	report.Execution = execSection(exec)
	report.DryRun = false

	if err := logCleanHistory(snap, exec); err != nil {
		printVerbose("Failed to record history: %v", err)
	}

	if err := printReport(report); err != nil {
		return err
	}
	if exec.Failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", exec.Failed, len(plan))
	}
	return nil
}

// resolveDir expands, absolutizes and validates a directory argument.
func resolveDir(arg string) (string, error) {
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", abs)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

// confirm prompts on stderr and reads a yes/no answer from stdin.
// Anything but an explicit yes declines.
func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// buildCleanReport converts the diff result into the output report.
func buildCleanReport(descriptor string, snap *snapshot.Snapshot, result *reconcile.Result, elapsed time.Duration, dryRun bool) *output.Report {
	section := &output.ReconcileSection{
		Extraneous: make([]output.PathEntry, 0, len(result.Extraneous)),
		Missing:    result.Missing,
		EmptyDirs:  result.EmptyDirs,
	}
	for _, path := range result.Extraneous {
		size := snap.Files[path]
		section.Extraneous = append(section.Extraneous, output.PathEntry{
			Path:      path,
			Size:      size,
			SizeHuman: types.FormatSize(size),
		})
	}

	return &output.Report{
		Mode:       "clean",
		Root:       snap.Root,
		Descriptor: descriptor,
		DryRun:     dryRun,
		Reconcile:  section,
		Stats: output.WalkStats{
			FilesScanned: len(snap.Files),
			DirsScanned:  len(snap.Dirs),
			Duration:     elapsed,
		},
		Warnings: warningStrings(snap),
	}
}

// execSection converts an execution report into its output section.
func execSection(exec *reconcile.ExecutionReport) *output.ExecutionSection {
	section := &output.ExecutionSection{
		Results: make([]output.OpLine, 0, len(exec.Results)),
		Deleted: exec.Deleted,
		Failed:  exec.Failed,
	}
	for _, res := range exec.Results {
		section.Results = append(section.Results, output.OpLine{
			Path:    res.Operation.Path,
			Kind:    string(res.Operation.Kind),
			Outcome: string(res.Outcome),
			Error:   res.Error,
		})
	}
	return section
}

func warningStrings(snap *snapshot.Snapshot) []string {
	if len(snap.Warnings) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(snap.Warnings))
	for _, w := range snap.Warnings {
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.Path, w.Message))
	}
	return warnings
}

// printReport formats the report with the configured formatter.
func printReport(report *output.Report) error {
	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = config.DefaultOutput
	}

	formatter, err := output.Get(outFormat)
	if err != nil {
		return usageErrorf("unknown output format %q: available formats are %v",
			outFormat, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// logCleanHistory records the executed deletions in the history journal.
func logCleanHistory(snap *snapshot.Snapshot, exec *reconcile.ExecutionReport) error {
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

	now := time.Now().UTC()
	records := make([]history.FileRecord, 0, len(exec.Results))
	for _, res := range exec.Results {
		rec := history.FileRecord{
			Path:    res.Operation.Path,
			Size:    snap.Files[res.Operation.Path],
			Outcome: string(res.Outcome),
		}
		if res.Outcome == reconcile.OutcomeDeleted {
			rec.DeletedAt = now
		}
		records = append(records, rec)
	}

	_, err = journal.LogClean(records)
	return err
}
