package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"torclean/pkg/torclean/config"
	"torclean/pkg/torclean/history"
	"torclean/pkg/torclean/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of clean and diff operations.

The journal stores a record of all operations performed by torclean,
including which files were deleted and with what outcome.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific operation",
	Long:  `Display detailed information about a specific operation by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns a journal instance with the configured directory.
func getJournal() (*history.Journal, error) {
	cfg, err := config.Load()
	if err != nil {
		// Use default history path if config fails to load
		historyDir, dirErr := config.HistoryDir()
		if dirErr != nil {
			return nil, fmt.Errorf("failed to get history directory: %w", dirErr)
		}
		return history.New(historyDir)
	}

	return history.New(cfg.History.Path)
}

// runHistory lists recent operations.
func runHistory(cmd *cobra.Command, args []string) error {
	journal, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	entries, err := journal.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'torclean <torrent> <dir>' to reconcile a directory.")
		return nil
	}

	fmt.Printf("\n%-40s  %-8s  %-8s  %-8s  %-12s\n", "ID", "TYPE", "FILES", "DELETED", "SIZE")
	fmt.Println(strings.Repeat("-", 84))

	for _, entry := range entries {
		fmt.Printf("%-40s  %-8s  %-8d  %-8d  %-12s\n",
			truncateString(entry.ID, 40),
			entry.Operation,
			entry.Summary.TotalFiles,
			entry.Summary.Deleted,
			types.FormatSize(entry.Summary.TotalBytes),
		)
	}

	fmt.Println(strings.Repeat("-", 84))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'torclean history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	journal, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	entry, err := journal.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nOperation Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Operation:  %s\n", entry.Operation)
	fmt.Printf("Files:      %d\n", entry.Summary.TotalFiles)
	fmt.Printf("Total Size: %s\n", types.FormatSize(entry.Summary.TotalBytes))
	if entry.Operation == history.OpClean {
		fmt.Printf("Deleted:    %d\n", entry.Summary.Deleted)
		fmt.Printf("Failed:     %d\n", entry.Summary.Failed)
	}

	if len(entry.Files) > 0 {
		fmt.Println("\nFiles:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-12s  %-18s  %s\n", "SIZE", "OUTCOME", "PATH")
		fmt.Println(strings.Repeat("-", 60))

		// Limit display to 50 files
		limit := 50
		if len(entry.Files) < limit {
			limit = len(entry.Files)
		}

		for i := 0; i < limit; i++ {
			file := entry.Files[i]
			fmt.Printf("%-12s  %-18s  %s\n",
				types.FormatSize(file.Size), file.Outcome, file.Path)
		}

		if len(entry.Files) > limit {
			fmt.Printf("\n... and %d more files\n", len(entry.Files)-limit)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	journal, err := history.New(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}

	retentionDays := cfg.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	if err := journal.Cleanup(retentionDays); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete.")
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
