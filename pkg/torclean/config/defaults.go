// Package config provides configuration management for torclean.
package config

// Default configuration values for torclean.
const (
	// DefaultOutput is the default output format.
	DefaultOutput = "pretty"

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/torclean"

	// DefaultHistoryDir is the default directory for history journal files.
	DefaultHistoryDir = "~/.config/torclean/.history"

	// DefaultRetentionDays is the default number of days to retain history.
	DefaultRetentionDays = 30
)

// DefaultProtect contains glob patterns that are never deletion candidates
// by default.
var DefaultProtect = []string{
	"**/.stfolder",
	"**/.stfolder/**",
}
