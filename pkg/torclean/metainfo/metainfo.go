// Package metainfo projects a decoded torrent descriptor into the file
// manifest the reconciler compares against disk. Only multi-file torrents
// are accepted; a single-file descriptor has no directory tree to reconcile
// and is rejected outright.
package metainfo

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for manifest projection. Positioned failures are
// reported as a *FieldError wrapping one of these.
var (
	// ErrNotMultiFile indicates a single-file torrent (a "length" key in
	// place of a "files" list). The tool explicitly rejects these.
	ErrNotMultiFile = errors.New("metainfo: not a multi-file torrent")

	// ErrMissingField indicates a required descriptor key is absent.
	ErrMissingField = errors.New("metainfo: missing required field")

	// ErrInvalidType indicates a descriptor key holds the wrong bencode kind.
	ErrInvalidType = errors.New("metainfo: invalid field type")

	// ErrInvalidPath indicates a file path entry that cannot name a file
	// under the torrent root: invalid UTF-8, an empty segment list, or a
	// segment that is empty, ".", "..", or contains a separator.
	ErrInvalidPath = errors.New("metainfo: invalid file path")

	// ErrInvalidPieces indicates piece geometry the descriptor cannot have:
	// an empty pieces blob, a blob that is not a multiple of 20 bytes, or a
	// zero piece length.
	ErrInvalidPieces = errors.New("metainfo: invalid piece data")
)

// FieldError reports which descriptor field a projection failure concerns,
// using dotted paths like "info.files[3].path".
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FileEntry is one file the manifest declares: its path as ordered segments
// below the torrent root, and its length in bytes.
type FileEntry struct {
	// Path holds the path segments, never empty and never containing "."
	// or "..".
	Path []string

	// Length is the declared byte count, never negative. It is
	// informational for reconciliation: presence is the equality key.
	Length int64
}

// RelPath returns the entry's slash-joined path below the torrent root.
func (f FileEntry) RelPath() string {
	return strings.Join(f.Path, "/")
}

// Info is the projected "info" dictionary of a multi-file torrent.
type Info struct {
	// Name is the torrent's root directory name.
	Name string

	// PieceLength is the declared piece size in bytes.
	PieceLength int64

	// Pieces holds the SHA-1 digest per piece. The reconciler never
	// verifies content against them; they are retained so callers can
	// report descriptor statistics.
	Pieces [][20]byte

	// Files is the ordered file manifest.
	Files []FileEntry
}

// Metainfo is the projected torrent descriptor.
type Metainfo struct {
	// Announce is the tracker URL, empty when the descriptor omits it.
	Announce string

	Info Info
}

// TotalLength returns the sum of all declared file lengths.
func (m *Metainfo) TotalLength() int64 {
	var total int64
	for _, f := range m.Info.Files {
		total += f.Length
	}
	return total
}

// PathSet returns the manifest's path set keyed by slash-relative path
// rooted at the torrent name ("Name/seg1/.../file"), mapped to declared
// length. This is the set the diff engine subtracts disk contents from.
func (m *Metainfo) PathSet() map[string]int64 {
	set := make(map[string]int64, len(m.Info.Files))
	for _, f := range m.Info.Files {
		set[m.Info.Name+"/"+f.RelPath()] = f.Length
	}
	return set
}
