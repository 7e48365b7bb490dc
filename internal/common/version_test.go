package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersionFormatsAllFields(t *testing.T) {
	savedVersion, savedBuild, savedCommit := Version, BuildTime, GitCommit
	defer func() { Version, BuildTime, GitCommit = savedVersion, savedBuild, savedCommit }()

	Version = "2.1.0"
	BuildTime = "2026-07-30T10:00:00Z"
	GitCommit = "abc123"

	assert.Equal(t, "2.1.0 (build: 2026-07-30T10:00:00Z, commit: abc123)", GetFullVersion())
}

func TestLoadVersionFromFileFallsBackWhenMissing(t *testing.T) {
	savedVersion := Version
	defer func() { Version = savedVersion }()

	Version = "1.0.0"
	got := LoadVersionFromFile()
	assert.Equal(t, Version, got, "executable directory has no .version file during tests, should keep current version")
}
