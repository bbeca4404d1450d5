package metainfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torclean/pkg/torclean/bencode"
)

// validPieces returns a pieces blob for n pieces.
func validPieces(n int) bencode.Value {
	return bencode.String(strings.Repeat("x", 20*n))
}

// fileDict builds a file entry dictionary.
func fileDict(length int64, segments ...string) bencode.Value {
	path := make([]bencode.Value, len(segments))
	for i, s := range segments {
		path[i] = bencode.String(s)
	}
	return bencode.Dict(
		"length", bencode.Integer(length),
		"path", bencode.List(path...),
	)
}

// descriptor builds a complete valid multi-file descriptor.
func descriptor() bencode.Value {
	return bencode.Dict(
		"announce", bencode.String("http://tracker.example/announce"),
		"info", bencode.Dict(
			"name", bencode.String("show"),
			"piece length", bencode.Integer(262144),
			"pieces", validPieces(2),
			"files", bencode.List(
				fileDict(100, "a.txt"),
				fileDict(200, "sub", "b.txt"),
			),
		),
	)
}

func TestParse_ValidMultiFile(t *testing.T) {
	m, err := Parse(bencode.Encode(descriptor()))
	require.NoError(t, err)

	assert.Equal(t, "http://tracker.example/announce", m.Announce)
	assert.Equal(t, "show", m.Info.Name)
	assert.Equal(t, int64(262144), m.Info.PieceLength)
	assert.Len(t, m.Info.Pieces, 2)
	require.Len(t, m.Info.Files, 2)
	assert.Equal(t, "a.txt", m.Info.Files[0].RelPath())
	assert.Equal(t, "sub/b.txt", m.Info.Files[1].RelPath())
	assert.Equal(t, int64(300), m.TotalLength())
}

func TestParse_PathSet(t *testing.T) {
	m, err := Parse(bencode.Encode(descriptor()))
	require.NoError(t, err)

	set := m.PathSet()
	assert.Equal(t, map[string]int64{
		"show/a.txt":     100,
		"show/sub/b.txt": 200,
	}, set)
}

func TestParse_AnnounceIsOptional(t *testing.T) {
	root := bencode.Dict(
		"info", bencode.Dict(
			"name", bencode.String("show"),
			"piece length", bencode.Integer(1024),
			"pieces", validPieces(1),
			"files", bencode.List(fileDict(1, "a")),
		),
	)
	m, err := Parse(bencode.Encode(root))
	require.NoError(t, err)
	assert.Empty(t, m.Announce)
}

func TestParse_RejectsSingleFile(t *testing.T) {
	root := bencode.Dict(
		"info", bencode.Dict(
			"name", bencode.String("file.iso"),
			"piece length", bencode.Integer(1024),
			"pieces", validPieces(1),
			"length", bencode.Integer(4096),
		),
	)
	_, err := Parse(bencode.Encode(root))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotMultiFile)
}

func TestParse_RejectsMissingInfo(t *testing.T) {
	root := bencode.Dict("announce", bencode.String("http://t"))
	_, err := Parse(bencode.Encode(root))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)

	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "info", ferr.Field)
}

func TestParse_RejectsBadPieceGeometry(t *testing.T) {
	tests := []struct {
		name string
		info bencode.Value
	}{
		{
			"zero piece length",
			bencode.Dict(
				"name", bencode.String("show"),
				"piece length", bencode.Integer(0),
				"pieces", validPieces(1),
				"files", bencode.List(fileDict(1, "a")),
			),
		},
		{
			"negative piece length",
			bencode.Dict(
				"name", bencode.String("show"),
				"piece length", bencode.Integer(-1),
				"pieces", validPieces(1),
				"files", bencode.List(fileDict(1, "a")),
			),
		},
		{
			"pieces not multiple of 20",
			bencode.Dict(
				"name", bencode.String("show"),
				"piece length", bencode.Integer(1024),
				"pieces", bencode.String(strings.Repeat("x", 21)),
				"files", bencode.List(fileDict(1, "a")),
			),
		},
		{
			"empty pieces",
			bencode.Dict(
				"name", bencode.String("show"),
				"piece length", bencode.Integer(1024),
				"pieces", bencode.String(""),
				"files", bencode.List(fileDict(1, "a")),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bencode.Encode(bencode.Dict("info", tt.info)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPieces)
		})
	}
}

func TestParse_RejectsBadName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", "a\\b", "a\x00b"} {
		info := bencode.Dict(
			"name", bencode.String(name),
			"piece length", bencode.Integer(1024),
			"pieces", validPieces(1),
			"files", bencode.List(fileDict(1, "a")),
		)
		_, err := Parse(bencode.Encode(bencode.Dict("info", info)))
		require.Error(t, err, "name %q", name)
		assert.ErrorIs(t, err, ErrInvalidPath, "name %q", name)
	}
}

func TestParse_RejectsBadFileEntries(t *testing.T) {
	tests := []struct {
		name string
		file bencode.Value
		want error
	}{
		{"missing length", bencode.Dict("path", bencode.List(bencode.String("a"))), ErrMissingField},
		{"negative length", fileDict(-1, "a"), ErrInvalidType},
		{"missing path", bencode.Dict("length", bencode.Integer(1)), ErrMissingField},
		{"empty path list", bencode.Dict("length", bencode.Integer(1), "path", bencode.List()), ErrInvalidPath},
		{"dotdot segment", fileDict(1, "..", "escape"), ErrInvalidPath},
		{"separator in segment", fileDict(1, "a/b"), ErrInvalidPath},
		{"entry not a dict", bencode.Integer(7), ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := bencode.Dict(
				"name", bencode.String("show"),
				"piece length", bencode.Integer(1024),
				"pieces", validPieces(1),
				"files", bencode.List(tt.file),
			)
			_, err := Parse(bencode.Encode(bencode.Dict("info", info)))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_RejectsEmptyFilesList(t *testing.T) {
	info := bencode.Dict(
		"name", bencode.String("show"),
		"piece length", bencode.Integer(1024),
		"pieces", validPieces(1),
		"files", bencode.List(),
	)
	_, err := Parse(bencode.Encode(bencode.Dict("info", info)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParse_FieldErrorNamesIndexedEntry(t *testing.T) {
	info := bencode.Dict(
		"name", bencode.String("show"),
		"piece length", bencode.Integer(1024),
		"pieces", validPieces(1),
		"files", bencode.List(fileDict(1, "ok"), fileDict(1, "..")),
	)
	_, err := Parse(bencode.Encode(bencode.Dict("info", info)))
	require.Error(t, err)

	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "info.files[1].path", ferr.Field)
}

func TestParse_PropagatesBencodeErrors(t *testing.T) {
	_, err := Parse([]byte("4:ab"))
	require.Error(t, err)
}
