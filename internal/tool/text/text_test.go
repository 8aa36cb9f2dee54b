package text

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cyclone1070/anu/internal/tool/service/fs"
	"github.com/Cyclone1070/anu/internal/tool/service/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// homeFS is the OS filesystem with a fixed home directory.
type homeFS struct {
	*fs.OSFileSystem
	home string
}

func (h homeFS) UserHomeDir() (string, error) { return h.home, nil }

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestReadFile_Absolute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "buy milk\n")
	s := New(nil, Options{})

	out, err := s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": path})

	require.NoError(t, err)
	var res readResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "buy milk\n", res.Content)
	assert.Equal(t, 9, res.Length)
	assert.False(t, res.Truncated)
}

func TestReadFile_DesktopFallbackAndHome(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "Desktop", "todo-anu-test.txt"), "desk")
	writeFile(t, filepath.Join(home, "docs", "a.txt"), "tilde")
	s := New(homeFS{fs.NewOSFileSystem(), home}, Options{})

	out, err := s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": "todo-anu-test.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, `"content":"desk"`)

	out, err = s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": "~/docs/a.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, `"content":"tilde"`)
}

func TestReadFile_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	writeFile(t, path, strings.Repeat("a", 50))
	s := New(nil, Options{MaxChars: 10})

	out, err := s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": path})

	require.NoError(t, err)
	var res readResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, strings.Repeat("a", 10), res.Content)
	assert.Equal(t, 50, res.Length)
	assert.True(t, res.Truncated)
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.txt")
	writeFile(t, big, strings.Repeat("x", 100))
	bin := filepath.Join(dir, "bin.dat")
	writeFile(t, bin, "ab\x00cd")
	s := New(nil, Options{MaxFileSize: 50})

	_, err := s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": big})
	assert.ErrorContains(t, err, "file too large")

	_, err = s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": bin})
	assert.ErrorIs(t, err, ErrNotText)

	_, err = s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": filepath.Join(dir, "nope.txt")})
	assert.ErrorContains(t, err, "file not found")

	_, err = s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": ""})
	assert.Error(t, err)
}

func TestWordCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poem.txt")
	writeFile(t, path, "roses are red\nviolets are blue\n")
	s := New(nil, Options{})

	out, err := s.Dispatch(context.Background(), "word_count", map[string]any{"filepath": path})

	require.NoError(t, err)
	var res countResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 6, res.Words)
	assert.Equal(t, 31, res.Characters)
}

func TestReadFile_DeniedPath(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, ".ssh", "id_rsa")
	writeFile(t, key, "secret")
	s := New(nil, Options{Deny: git.NewIgnoreMatcher([]string{".ssh/"})})

	_, err := s.Dispatch(context.Background(), "read_file_content", map[string]any{"filepath": key})

	assert.ErrorIs(t, err, ErrDenied)
}
