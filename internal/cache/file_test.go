package cache

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "summaries.json"))
	assert.Equal(t, 0, s.Len())
}

func TestLoad_UnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := Load(path)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_NonStringValueKeepsOtherSummaries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": "Existing summary.", "legacy": 1}`), 0644))

	s := Load(path)
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Existing summary.", v)
	assert.Equal(t, 2, s.Len())
}

func TestEncode_TwoSpaceIndent(t *testing.T) {
	s := New()
	s.Set("b", "Second.")
	s.Set("a", "First.")

	data, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": \"Second.\",\n  \"a\": \"First.\"\n}", string(data))
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(New())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_data", "nested", "summaries.json")
	s := New()
	s.Set("a", "Alpha.")

	require.NoError(t, Save(path, s))

	loaded, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded.Keys())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSave_RoundTripIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.json")
	s := New()
	s.Set("x", "Ex.")
	s.Set("y", "Why?")
	require.NoError(t, Save(path, s))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Save(path, Load(path)))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSave_UnwritableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.MkdirAll(dir, 0555))
	path := filepath.Join(dir, "summaries.json")

	err := Save(path, New())
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, path, writeErr.Path)
}

func TestSave_TargetIsDirectory(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "summaries.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0755))

	err := Save(path, New())

	var writeErr *WriteError
	assert.True(t, errors.As(err, &writeErr))
}
