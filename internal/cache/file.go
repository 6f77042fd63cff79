package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteError is returned when the cache file cannot be written.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write summaries to %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Read loads the cache file strictly.
func Read(path string) (*Summaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Load returns the cached summaries, or an empty mapping when the file is absent or unparseable.
func Load(path string) *Summaries {
	s, err := Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Ignoring unreadable summaries cache", "path", path, "error", err)
		}
		return New()
	}
	return s
}

// Encode renders the mapping as JSON with two-space indentation.
func Encode(s *Summaries) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Save writes the mapping to path, creating parent directories.
// The data is written to a temporary file next to path and renamed into place,
// so an existing cache is left intact if the write fails.
func Save(path string, s *Summaries) error {
	data, err := Encode(s)
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}
