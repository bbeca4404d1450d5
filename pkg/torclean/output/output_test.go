package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleCleanReport() *Report {
	return &Report{
		Mode:       "clean",
		Root:       "/data/seeds",
		Descriptor: "show.torrent",
		Reconcile: &ReconcileSection{
			Extraneous: []PathEntry{
				{Path: "show/sub/c.txt", Size: 1073741824, SizeHuman: "1.0 GiB"},
				{Path: "show/old.txt", Size: 512, SizeHuman: "512 B"},
			},
			Missing:   []string{"show/a.txt"},
			EmptyDirs: []string{"show/sub"},
		},
		Stats: WalkStats{FilesScanned: 4, DirsScanned: 2, Duration: time.Second},
	}
}

func TestRegistry_GetAndAvailable(t *testing.T) {
	for _, name := range []string{"pretty", "plain", "json", "yaml"} {
		f, err := Get(name)
		require.NoError(t, err, "formatter %q", name)
		assert.NotNil(t, f)
	}

	_, err := Get("bogus")
	require.Error(t, err)

	available := Available()
	assert.Contains(t, available, "pretty")
	assert.Contains(t, available, "json")
	assert.IsType(t, []string{}, available)
}

func TestRegistry_CustomRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", func() Formatter { return &PlainFormatter{} })

	f, err := r.Get("noop")
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, []string{"noop"}, r.Available())
}

func TestReport_ReclaimableSize(t *testing.T) {
	r := sampleCleanReport()
	assert.Equal(t, int64(1073741824+512), r.ReclaimableSize())

	assert.Zero(t, (&Report{Mode: "diff"}).ReclaimableSize())
}

func TestPlainFormatter_CleanReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleCleanReport()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "extraneous")
	assert.Contains(t, lines[0], "show/sub/c.txt")
	assert.Contains(t, out, "empty-dir")
	assert.Contains(t, out, "show/sub/")
	assert.Contains(t, out, "missing")
	// No ANSI escapes in plain output.
	assert.NotContains(t, out, "\x1b[")
}

func TestPlainFormatter_DiffReport(t *testing.T) {
	report := &Report{
		Mode: "diff",
		Root: "/after",
		Changes: &ChangesSection{
			Added:   []PathEntry{{Path: "new.txt", Size: 1, SizeHuman: "1 B"}},
			Removed: []PathEntry{{Path: "gone.txt", Size: 2, SizeHuman: "2 B"}},
			Resized: []SizeEntry{{Path: "grown.txt", OldSize: 1, NewSize: 9}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "new.txt")
	assert.Contains(t, out, "removed")
	assert.Contains(t, out, "resized")
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleCleanReport()))

	var parsed Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "clean", parsed.Mode)
	assert.Equal(t, "/data/seeds", parsed.Root)
	require.NotNil(t, parsed.Reconcile)
	assert.Len(t, parsed.Reconcile.Extraneous, 2)
	assert.Equal(t, []string{"show/a.txt"}, parsed.Reconcile.Missing)
}

func TestJSONFormatter_OmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, &Report{Mode: "diff", Root: "/x"}))

	out := buf.String()
	assert.NotContains(t, out, "reconcile")
	assert.NotContains(t, out, "execution")
}

func TestYAMLFormatter_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleCleanReport()))

	var parsed Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "clean", parsed.Mode)
	require.NotNil(t, parsed.Reconcile)
	assert.Equal(t, "show/sub/c.txt", parsed.Reconcile.Extraneous[0].Path)
}

func TestPrettyFormatter_CleanReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleCleanReport()))

	out := buf.String()
	assert.Contains(t, out, "/data/seeds")
	assert.Contains(t, out, "show.torrent")
	assert.Contains(t, out, "show/sub/c.txt")
	assert.Contains(t, out, "Extraneous files")
	assert.Contains(t, out, "Missing files")
}

func TestPrettyFormatter_ExecutionSection(t *testing.T) {
	report := sampleCleanReport()
	report.Execution = &ExecutionSection{
		Results: []OpLine{
			{Path: "show/sub/c.txt", Kind: "file", Outcome: "deleted"},
			{Path: "show/sub", Kind: "dir", Outcome: "not-empty", Error: "directory not empty"},
		},
		Deleted: 1,
		Failed:  1,
	}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "not-empty")
	assert.Contains(t, out, "show/sub/")
}

func TestPrettyFormatter_DryRunNotice(t *testing.T) {
	report := sampleCleanReport()
	report.DryRun = true

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, report))
	assert.Contains(t, buf.String(), "Dry run")
}

func TestPrettyFormatter_Warnings(t *testing.T) {
	report := sampleCleanReport()
	report.Warnings = []string{"show/locked: permission denied"}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, report))
	assert.Contains(t, buf.String(), "permission denied")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ms", formatDuration(500*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "1m 30s", formatDuration(90*time.Second))
}
