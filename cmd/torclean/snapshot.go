package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"torclean/pkg/torclean/config"
	"torclean/pkg/torclean/snapshot"
	"torclean/pkg/torclean/store"
	"torclean/pkg/torclean/types"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored directory snapshots",
	Long: `Store, list and delete named directory snapshots.

A stored snapshot records the files and directories below a root at the
time of the save. It can later serve as the before side of a diff:

  torclean snapshot save nightly ~/seeds
  torclean diff --snapshot nightly ~/seeds`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name> <dir>",
	Short: "Walk a directory and store it under a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// openStore opens the snapshot database at the configured path.
func openStore() (*store.Store, error) {
	path := viper.GetString("store.path")
	if path == "" {
		if err := config.EnsureDataDir(); err != nil {
			return nil, err
		}
		path = config.DefaultStorePath()
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return s, nil
}

// loadStoredSnapshot loads a named snapshot from the store.
func loadStoredSnapshot(name string) (*snapshot.Snapshot, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	snap, err := s.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", name, err)
	}
	return snap, nil
}

// runSnapshotSave walks a directory and stores the snapshot.
func runSnapshotSave(_ *cobra.Command, args []string) error {
	name := args[0]
	root, err := resolveDir(args[1])
	if err != nil {
		return err
	}

	snap, err := snapshot.Walk(root, snapshot.WalkOptions{
		FollowSymlinks: viper.GetBool("follow_symlinks"),
		Protect:        viper.GetStringSlice("protect"),
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Save(name, snap); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", name, err)
	}

	printInfo("Saved snapshot %q: %d files, %s",
		name, snap.FileCount(), types.FormatSize(snap.TotalSize()))
	return nil
}

// runSnapshotList lists stored snapshots.
func runSnapshotList(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	infos, err := s.List()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(infos) == 0 {
		printInfo("No snapshots stored.")
		printInfo("Run 'torclean snapshot save <name> <dir>' to create one.")
		return nil
	}

	fmt.Printf("%-20s  %-8s  %-12s  %-20s  %s\n", "NAME", "FILES", "SIZE", "CREATED", "ROOT")
	fmt.Println(strings.Repeat("-", 90))
	for _, info := range infos {
		fmt.Printf("%-20s  %-8d  %-12s  %-20s  %s\n",
			info.Name,
			info.Files,
			types.FormatSize(info.TotalSize),
			info.Created.Local().Format(time.DateTime),
			info.Root,
		)
	}
	return nil
}

// runSnapshotDelete removes a stored snapshot.
func runSnapshotDelete(_ *cobra.Command, args []string) error {
	name := args[0]

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Delete(name); err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", name, err)
	}

	printInfo("Deleted snapshot %q.", name)
	return nil
}
