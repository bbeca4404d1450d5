package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1024", 1024},
		{"0", 0},
		{"100K", 100 * KiB},
		{"100k", 100 * KiB},
		{"50MiB", 50 * MiB},
		{"2GB", 2 * GiB},
		{"1T", TiB},
		{"1.5G", GiB + 512*MiB},
		{" 10M ", 10 * MiB},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSize_Errors(t *testing.T) {
	for _, input := range []string{"", "abc", "10X", "M10", "1..5G"} {
		_, err := ParseSize(input)
		assert.ErrorIs(t, err, ErrInvalidSize, "input %q", input)
	}

	_, err := ParseSize("-5M")
	assert.ErrorIs(t, err, ErrNegativeSize)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "0 B", FormatSize(0))
}

func TestPathDepth(t *testing.T) {
	assert.Equal(t, 0, PathDepth(""))
	assert.Equal(t, 0, PathDepth("a.txt"))
	assert.Equal(t, 1, PathDepth("a/b.txt"))
	assert.Equal(t, 3, PathDepth("a/b/c/d"))
}

func TestParentDirs(t *testing.T) {
	assert.Nil(t, ParentDirs("c.txt"))
	assert.Equal(t, []string{"a"}, ParentDirs("a/b.txt"))
	assert.Equal(t, []string{"a/b", "a"}, ParentDirs("a/b/c.txt"))
}

func TestTopSegment(t *testing.T) {
	assert.Equal(t, "a", TopSegment("a/b/c"))
	assert.Equal(t, "c.txt", TopSegment("c.txt"))
}
