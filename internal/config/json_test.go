package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"local_db_path":        "vault.db",
		"remote_url":           "postgres://db:5432/nutrilog",
		"remote_key":           "key",
		"remote_auto_migrate":  true,
		"entries_ttl":          "1m",
		"settings_ttl":         30000000000,
		"retention_days":       3,
		"migration_chunk_size": 10,
		"s3_bucket":            "bucket",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "vault.db", cfg.LocalDBPath)
		assert.Equal(t, "postgres://db:5432/nutrilog", cfg.RemoteURL)
		assert.Equal(t, "key", cfg.RemoteKey)
		assert.True(t, cfg.RemoteAutoMigrate)
		assert.Equal(t, time.Minute, cfg.EntriesTTL)
		assert.Equal(t, 30*time.Second, cfg.SettingsTTL)
		assert.Equal(t, 3, cfg.RetentionDays)
		assert.Equal(t, 10, cfg.MigrationChunkSize)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		// untouched
		assert.Equal(t, 200, cfg.RemoteListLimit)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("no CONFIG → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseJson(cfg)

		assert.Equal(t, want, *cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("malformed file panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
