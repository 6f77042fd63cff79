//go:build integration

package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LiveAnthropic(t *testing.T) {
	_ = godotenv.Load("../../.env")
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	root := newSite(t)
	stdout, stderr, err := execute(t, "generate", "--site", root)
	require.NoError(t, err)
	assert.Empty(t, stderr, "no request should fall back")
	assert.Contains(t, stdout, "Generated 2 new summaries, skipped 0 existing")

	got := readSummaries(t, root)
	assert.NotEmpty(t, got["a"])
	assert.NotEmpty(t, got["b"])
}
