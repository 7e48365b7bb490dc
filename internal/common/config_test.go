package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.NoError(t, ValidateJobSchedule(cfg.Jobs.PrimaryGroupSchedule))
	assert.NoError(t, ValidateJobSchedule(cfg.Jobs.SecondaryGroupSchedule))
	assert.NoError(t, ValidateJobSchedule(cfg.Jobs.CleanupSchedule))
}

func TestLoadFromFilesLayersOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "staging"

[database]
dsn = "postgres://base/db"
`), 0644))

	require.NoError(t, os.WriteFile(override, []byte(`
[database]
dsn = "postgres://override/db"
`), 0644))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment, "only set in base, should survive the override file")
	assert.Equal(t, "postgres://override/db", cfg.Database.DSN, "override file applied after base")
}

func TestLoadFromFilesSkipsBlankPaths(t *testing.T) {
	cfg, err := LoadFromFiles("", "")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Database.DSN, cfg.Database.DSN)
}

func TestLoadFromFilesMissingFileErrors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FXRATES_ENV", "production")
	t.Setenv("FXRATES_DATABASE_DSN", "postgres://env/db")
	t.Setenv("FXRATES_MAX_RETRIES", "7")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, 7, cfg.Scraper.MaxRetries)
}

func TestApplyEnvOverridesIgnoresInvalidMaxRetries(t *testing.T) {
	t.Setenv("FXRATES_MAX_RETRIES", "not-a-number")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, NewDefaultConfig().Scraper.MaxRetries, cfg.Scraper.MaxRetries)
}

func TestValidateJobSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "valid four times daily", schedule: "0 0,6,12,18 * * *", wantErr: false},
		{name: "valid every 15 minutes", schedule: "*/15 * * * *", wantErr: false},
		{name: "rejects every minute", schedule: "* * * * *", wantErr: true},
		{name: "rejects sub-5-minute interval", schedule: "*/2 * * * *", wantErr: true},
		{name: "rejects malformed expression", schedule: "not a cron", wantErr: true},
		{name: "rejects too few fields", schedule: "0 0 *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{env: "production", want: true},
		{env: "prod", want: true},
		{env: "  PROD  ", want: true},
		{env: "development", want: false},
		{env: "", want: false},
	}

	for _, tt := range tests {
		cfg := &Config{Environment: tt.env}
		assert.Equal(t, tt.want, cfg.IsProduction(), "environment %q", tt.env)
	}
}
