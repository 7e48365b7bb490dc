package fxrates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAgentRotatorLoadSkipsBlankAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user_agents.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\nAgent-One\nAgent-Two\n  \n"), 0644))

	r := &UserAgentRotator{}
	require.NoError(t, r.Load(path))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[r.Random()] = true
	}
	assert.Equal(t, map[string]bool{"Agent-One": true, "Agent-Two": true}, seen)
}

func TestUserAgentRotatorLoadRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n\n"), 0644))

	r := &UserAgentRotator{}
	err := r.Load(path)
	assert.Error(t, err)
}

func TestUserAgentRotatorLoadMissingFile(t *testing.T) {
	r := &UserAgentRotator{}
	err := r.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
