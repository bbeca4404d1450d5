// Package store persists named directory snapshots in a Badger database so
// the diff mode can compare a directory against a prior run. The
// comparison engine never sees the database; it consumes plain snapshot
// values loaded from here.
package store

import (
	"bytes"
	"encoding/gob"
	"time"
)

// StoreVersion is incremented when the on-disk record format changes.
const StoreVersion = 1

// KeySeparator separates the snapshot name from the relative path in keys.
const KeySeparator = '\x00'

// metaRecord is the per-snapshot header, stored under the bare name key.
type metaRecord struct {
	Version   int
	Root      string
	Created   time.Time
	Files     int
	TotalSize int64
}

// entryRecord is one filesystem entry of a stored snapshot.
type entryRecord struct {
	IsDir     bool
	Size      int64 // file size in bytes, 0 for directories
	Protected bool
}

// Info describes a stored snapshot for listings.
type Info struct {
	Name      string    `json:"name"`
	Root      string    `json:"root"`
	Files     int       `json:"files"`
	TotalSize int64     `json:"total_size"`
	Created   time.Time `json:"created"`
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// makeKey creates a store key from snapshot name and relative path.
// The bare name (empty relPath) addresses the meta record.
func makeKey(name, relPath string) []byte {
	if relPath == "" {
		return []byte(name + string(KeySeparator))
	}
	return []byte(name + string(KeySeparator) + relPath)
}

// parseKey extracts snapshot name and relative path from a store key.
func parseKey(key []byte) (name, relPath string) {
	idx := bytes.IndexByte(key, KeySeparator)
	if idx == -1 {
		return string(key), ""
	}
	return string(key[:idx]), string(key[idx+1:])
}

// makePrefix returns the key prefix for all records of a snapshot.
func makePrefix(name string) []byte {
	return []byte(name + string(KeySeparator))
}
