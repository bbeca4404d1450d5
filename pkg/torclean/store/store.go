package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"torclean/pkg/torclean/snapshot"
)

// ErrNotFound is returned when a named snapshot doesn't exist.
var ErrNotFound = errors.New("store: snapshot not found")

// ErrInvalidName is returned for snapshot names the key scheme can't hold.
var ErrInvalidName = errors.New("store: invalid snapshot name")

// Store wraps Badger for snapshot persistence.
type Store struct {
	db *badger.DB
}

// Open opens or creates a snapshot store at the given path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func checkName(name string) error {
	if name == "" || strings.ContainsRune(name, KeySeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save stores a snapshot under name, replacing any previous snapshot with
// the same name.
func (s *Store) Save(name string, snap *snapshot.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := s.deletePrefix(makePrefix(name)); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	meta := metaRecord{
		Version:   StoreVersion,
		Root:      snap.Root,
		Created:   time.Now().UTC(),
		Files:     snap.FileCount(),
		TotalSize: snap.TotalSize(),
	}
	metaVal, err := encode(&meta)
	if err != nil {
		return fmt.Errorf("encoding meta record: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set(makeKey(name, ""), metaVal); err != nil {
		return err
	}

	for path, size := range snap.Files {
		_, protected := snap.Protected[path]
		val, err := encode(&entryRecord{Size: size, Protected: protected})
		if err != nil {
			return fmt.Errorf("encoding entry %q: %w", path, err)
		}
		if err := wb.Set(makeKey(name, path), val); err != nil {
			return err
		}
	}

	for dir := range snap.Dirs {
		val, err := encode(&entryRecord{IsDir: true})
		if err != nil {
			return fmt.Errorf("encoding entry %q: %w", dir, err)
		}
		if err := wb.Set(makeKey(name, dir), val); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Load reconstructs the snapshot stored under name.
func (s *Store) Load(name string) (*snapshot.Snapshot, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	snap := &snapshot.Snapshot{
		Files: make(map[string]int64),
		Dirs:  make(map[string]struct{}),
	}
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := makePrefix(name)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			_, relPath := parseKey(item.KeyCopy(nil))

			if relPath == "" {
				var meta metaRecord
				if err := item.Value(func(val []byte) error {
					return decode(val, &meta)
				}); err != nil {
					return fmt.Errorf("decoding meta record: %w", err)
				}
				snap.Root = meta.Root
				found = true
				continue
			}

			var entry entryRecord
			if err := item.Value(func(val []byte) error {
				return decode(val, &entry)
			}); err != nil {
				return fmt.Errorf("decoding entry %q: %w", relPath, err)
			}

			if entry.IsDir {
				snap.Dirs[relPath] = struct{}{}
				continue
			}
			snap.Files[relPath] = entry.Size
			if entry.Protected {
				if snap.Protected == nil {
					snap.Protected = make(map[string]struct{})
				}
				snap.Protected[relPath] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return snap, nil
}

// List returns metadata for every stored snapshot, sorted by name.
func (s *Store) List() ([]Info, error) {
	var infos []Info

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name, relPath := parseKey(item.KeyCopy(nil))
			if relPath != "" {
				continue
			}

			var meta metaRecord
			if err := item.Value(func(val []byte) error {
				return decode(val, &meta)
			}); err != nil {
				continue // skip unreadable records
			}

			infos = append(infos, Info{
				Name:      name,
				Root:      meta.Root,
				Files:     meta.Files,
				TotalSize: meta.TotalSize,
				Created:   meta.Created,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(makeKey(name, ""))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return s.deletePrefix(makePrefix(name))
}

// deletePrefix removes all records with the given key prefix.
func (s *Store) deletePrefix(prefix []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}
