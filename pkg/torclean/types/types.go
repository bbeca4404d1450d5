// Package types provides shared helpers for the torclean reconciler:
// human-readable size parsing and formatting, and relative-path utilities
// used by the diff and planning stages.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It accepts plain bytes ("1024"), and K/M/G/T suffixes with optional B or iB
// ("100K", "50MiB", "2GB"). Decimal values are truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// PathDepth returns the number of "/" separators in a slash-relative path.
// Deletion planning orders directories by descending depth so children are
// always removed before their parents.
func PathDepth(rel string) int {
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/")
}

// ParentDirs returns every ancestor directory of a slash-relative file path,
// nearest first. "a/b/c.txt" yields ["a/b", "a"]. A surface path ("c.txt")
// yields nothing.
func ParentDirs(rel string) []string {
	var dirs []string
	for {
		idx := strings.LastIndexByte(rel, '/')
		if idx <= 0 {
			return dirs
		}
		rel = rel[:idx]
		dirs = append(dirs, rel)
	}
}

// TopSegment returns the first path segment of a slash-relative path.
// Files whose top segment differs from the torrent name live beside the
// torrent's directory tree and are out of reconciliation scope.
func TopSegment(rel string) string {
	if idx := strings.IndexByte(rel, '/'); idx >= 0 {
		return rel[:idx]
	}
	return rel
}
