package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"torclean/pkg/torclean/logging"
)

// backupNames lists rotated backups of the given log file.
func backupNames(t *testing.T, path string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading log directory: %v", err)
	}
	base := filepath.Base(path)
	var names []string
	for _, e := range entries {
		if e.Name() != base && strings.HasPrefix(e.Name(), base+".") {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestRotatingWriter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "app.log")

	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("log file content = %q, want %q", data, "hello\n")
	}
}

func TestRotatingWriter_RotatesOnSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxSize: 32})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	first := []byte("first payload 20byte")
	second := []byte("next payload 20bytes")
	if _, err := w.Write(first); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if _, err := w.Write(second); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading current log: %v", err)
	}
	if string(data) != string(second) {
		t.Errorf("current log = %q, want only the post-rotation payload %q", data, second)
	}

	backups := backupNames(t, path)
	if len(backups) != 1 {
		t.Fatalf("backups = %v, want exactly one", backups)
	}
	backup, err := os.ReadFile(filepath.Join(filepath.Dir(path), backups[0]))
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backup) != string(first) {
		t.Errorf("backup content = %q, want %q", backup, first)
	}
}

func TestRotatingWriter_PrunesExcessBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	oldBackup := filepath.Join(dir, "app.log.2020-01-01T00-00-00")
	newBackup := filepath.Join(dir, "app.log.2021-01-01T00-00-00")
	for _, p := range []string{oldBackup, newBackup} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("creating backup fixture: %v", err)
		}
	}

	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := os.Stat(oldBackup); !os.IsNotExist(err) {
		t.Error("oldest backup beyond MaxBackups not pruned")
	}
	if _, err := os.Stat(newBackup); err != nil {
		t.Errorf("newest backup within MaxBackups removed: %v", err)
	}
}

func TestRotatingWriter_PrunesAgedBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	aged := filepath.Join(dir, "app.log.2020-01-01T00-00-00")
	if err := os.WriteFile(aged, []byte("x"), 0o644); err != nil {
		t.Fatalf("creating backup fixture: %v", err)
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(aged, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxAge: 7})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := os.Stat(aged); !os.IsNotExist(err) {
		t.Error("backup older than MaxAge not pruned")
	}
}
