package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"torclean/pkg/torclean/config"
	"torclean/pkg/torclean/logging"
	"torclean/pkg/torclean/types"
)

// usageError marks errors caused by bad invocation rather than runtime
// failure. They exit with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "torclean <torrent> <dir>",
		Short: "Reconcile a directory against a torrent descriptor",
		Long: `Torclean compares a directory tree against the file manifest of a
torrent descriptor and deletes files the descriptor does not declare.

Only files inside the torrent's named directory are deletion candidates;
declared files and anything outside that directory are always left alone.
Nothing is deleted without confirmation unless --no-confirm is given.

Examples:
  torclean show.torrent ~/seeds            # Preview and confirm deletions
  torclean -s show.torrent ~/seeds         # Also flag undeclared surface files
  torclean --empty-dirs show.torrent ~/seeds
  torclean --dry-run show.torrent ~/seeds  # Report only, never delete
  torclean diff ./before ./after           # Compare two directory trees
  torclean snapshot save nightly ~/seeds   # Store a snapshot for later diffs`,
		Args:         cobra.MaximumNArgs(2),
		RunE:         runClean,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/torclean/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, yaml)")
	rootCmd.PersistentFlags().StringSlice("protect", nil, "glob patterns never considered for deletion")
	rootCmd.PersistentFlags().Bool("follow-symlinks", false, "follow symbolic links while walking")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Clean flags (root command only)
	rootCmd.Flags().BoolP("surface", "s", false, "treat undeclared files directly inside the torrent directory as extraneous")
	rootCmd.Flags().Bool("empty-dirs", false, "delete directories left empty after reconciliation")
	rootCmd.Flags().BoolP("no-confirm", "d", false, "delete without asking for confirmation")
	rootCmd.Flags().Bool("dry-run", false, "report candidates without deleting anything")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("protect", rootCmd.PersistentFlags().Lookup("protect"))
	_ = viper.BindPFlag("follow_symlinks", rootCmd.PersistentFlags().Lookup("follow-symlinks"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("surface", rootCmd.Flags().Lookup("surface"))
	_ = viper.BindPFlag("empty_dirs", rootCmd.Flags().Lookup("empty-dirs"))
	_ = viper.BindPFlag("no_confirm", rootCmd.Flags().Lookup("no-confirm"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))

	// Treat flag parse failures as usage errors
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "torclean"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "torclean"))
		}
	}

	viper.SetEnvPrefix("TORCLEAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("protect", config.DefaultProtect)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.retention_days", config.DefaultRetentionDays)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.rotation.max_size", "10MB")
	viper.SetDefault("logging.rotation.max_age", 30)
	viper.SetDefault("logging.rotation.max_backups", 5)
	viper.SetDefault("logging.rotation.daily", true)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	initLogging()
}

// initLogging sets up file logging from the loaded configuration.
// Failures are reported but never fatal; logging falls back to silent.
func initLogging() {
	maxSize, err := types.ParseSize(viper.GetString("logging.rotation.max_size"))
	if err != nil {
		maxSize = logging.DefaultRotationConfig().MaxSize
	}

	cfg := logging.Config{
		Level: viper.GetString("logging.level"),
		Path:  viper.GetString("logging.path"),
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     viper.GetInt("logging.rotation.max_age"),
			MaxBackups: viper.GetInt("logging.rotation.max_backups"),
			Daily:      viper.GetBool("logging.rotation.daily"),
		},
		Components: viper.GetStringMapString("logging.components"),
	}
	if getVerbose() {
		cfg.Level = "debug"
		cfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
