package ioload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/config"
)

func TestRead_SmallFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\nworld\n"), 0o644))

	result, err := Read(path, config.Defaults().IO)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", result.Content)
	assert.Equal(t, path, result.Filename)
	assert.False(t, result.IsDirectory)
}

func TestRead_Directory(t *testing.T) {
	dir := t.TempDir()

	result, err := Read(dir, config.Defaults().IO)
	require.NoError(t, err)
	assert.True(t, result.IsDirectory)
	assert.Equal(t, dir, result.Filename)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"), config.Defaults().IO)
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestRead_LargeFileHeadTailSplice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")

	var b strings.Builder
	for i := 0; i < 10000; i++ {
		b.WriteString("line-of-filler-text-to-pad-the-file-out\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	cfg := config.IO{MaxFileSize: 1000, HeadBytes: 200, TailBytes: 200}
	result, err := Read(path, cfg)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Content, "line-of-filler-text-to-pad-the-file-out\n"))
	assert.Contains(t, result.Content, "truncated")
	assert.True(t, strings.HasSuffix(result.Content, "line-of-filler-text-to-pad-the-file-out\n"))
}

func TestRead_LargeFileWithOverlappingHeadTailHasNoTruncationMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medium.txt")

	content := strings.Repeat("x", 900) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := config.IO{MaxFileSize: 500, HeadBytes: 600, TailBytes: 600}
	result, err := Read(path, cfg)
	require.NoError(t, err)
	assert.NotContains(t, result.Content, "truncated")
}
