package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "opeds", "a.md"), "---\ntitle: Alpha\n---\nFirst point. Second point. Third point.")
	writeFile(t, filepath.Join(root, "opeds", "index.md"), "---\ntitle: Op-eds\n---\nListing.")
	writeFile(t, filepath.Join(root, "investigate", "b.md"), "---\ntitle: Beta\n---\nOnly sentence here")
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readSummaries(t *testing.T, root string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "_data", "summaries.json"))
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func withoutCredentials(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
}

func TestGenerate_NoCredentialsFallsBack(t *testing.T) {
	withoutCredentials(t)
	root := newSite(t)

	stdout, stderr, err := execute(t, "generate", "--site", root)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Generated 2 new summaries, skipped 0 existing")
	assert.Contains(t, stdout, "Wrote summaries to "+filepath.Join(root, "_data", "summaries.json"))
	assert.Contains(t, stderr, "✗ opeds/a.md:")
	assert.Contains(t, stderr, "✗ investigate/b.md:")

	got := readSummaries(t, root)
	assert.Equal(t, map[string]string{
		"a": "First point. Second point.",
		"b": "Only sentence here",
	}, got)
}

func TestGenerate_BareCommandRunsPass(t *testing.T) {
	withoutCredentials(t)
	root := newSite(t)

	stdout, _, err := execute(t, "--site", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 2 new summaries, skipped 0 existing")
}

func TestGenerate_SecondRunSkipsEverything(t *testing.T) {
	withoutCredentials(t)
	root := newSite(t)

	_, _, err := execute(t, "generate", "--site", root)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, "_data", "summaries.json"))
	require.NoError(t, err)

	stdout, _, err := execute(t, "generate", "--site", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "⏭ opeds/a.md: already has summary, skipped")
	assert.Contains(t, stdout, "Generated 0 new summaries, skipped 2 existing")

	second, err := os.ReadFile(filepath.Join(root, "_data", "summaries.json"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerate_UsesAnthropicEndpoint(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "custom-model", body.Model)
		assert.Equal(t, 150, body.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"  A crisp teaser.  "}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	root := newSite(t)

	stdout, _, err := execute(t, "generate", "--site", root, "--base-url", server.URL, "--model", "custom-model")
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	assert.Contains(t, stdout, "✓ opeds/a.md: A crisp teaser.")
	assert.Equal(t, map[string]string{"a": "A crisp teaser.", "b": "A crisp teaser."}, readSummaries(t, root))
}

func TestGenerate_ServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	root := newSite(t)

	stdout, stderr, err := execute(t, "generate", "--site", root, "--base-url", server.URL, "--retries", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 2 new summaries, skipped 0 existing")
	assert.Contains(t, stderr, "slow down")
	assert.Equal(t, "First point. Second point.", readSummaries(t, root)["a"])
}

func TestGenerate_InvalidConfig(t *testing.T) {
	withoutCredentials(t)
	root := newSite(t)

	_, _, err := execute(t, "generate", "--site", root, "--provider", "openai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")

	_, statErr := os.Stat(filepath.Join(root, "_data", "summaries.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_MissingDirectoriesStillWritesCache(t *testing.T) {
	withoutCredentials(t)
	root := t.TempDir()

	stdout, _, err := execute(t, "generate", "--site", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 0 new summaries, skipped 0 existing")
	assert.Empty(t, readSummaries(t, root))
}

func TestStatus(t *testing.T) {
	root := newSite(t)
	writeFile(t, filepath.Join(root, "_data", "summaries.json"), `{"a": "Cached."}`)

	stdout, _, err := execute(t, "status", "--site", root)
	require.NoError(t, err)

	assert.Contains(t, stdout, "cached   opeds/a.md")
	assert.Contains(t, stdout, "pending  investigate/b.md")
	assert.Contains(t, stdout, "1 pending, 1 cached")
	assert.NotContains(t, stdout, "index.md")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid cache", content: `{"a": "One.", "b": ""}`},
		{name: "empty object", content: `{}`},
		{name: "non-string value", content: `{"a": 1}`, wantErr: true},
		{name: "array", content: `["a"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "_data", "summaries.json"), tt.content)

			stdout, _, err := execute(t, "validate", "--site", root)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, "Validation passed")
		})
	}
}

func TestValidate_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.json")
	writeFile(t, path, `{"x": "y"}`)

	stdout, _, err := execute(t, "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "--site", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read file")
}

func TestIsContentEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write markdown", fsnotify.Event{Name: "opeds/a.md", Op: fsnotify.Write}, true},
		{"create markdown", fsnotify.Event{Name: "opeds/a.md", Op: fsnotify.Create}, true},
		{"rename markdown", fsnotify.Event{Name: "opeds/a.md", Op: fsnotify.Rename}, true},
		{"remove markdown", fsnotify.Event{Name: "opeds/a.md", Op: fsnotify.Remove}, false},
		{"chmod markdown", fsnotify.Event{Name: "opeds/a.md", Op: fsnotify.Chmod}, false},
		{"editor swap file", fsnotify.Event{Name: "opeds/.a.md.swp", Op: fsnotify.Write}, false},
		{"other extension", fsnotify.Event{Name: "opeds/a.txt", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isContentEvent(tt.event, ".md"))
		})
	}
}

func TestWatch_NoContentDirectories(t *testing.T) {
	withoutCredentials(t)

	_, _, err := execute(t, "watch", "--site", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content directories")
}
