package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "nutrilog.db", c.LocalDBPath)
	assert.Equal(t, 200, c.RemoteListLimit)
	assert.Equal(t, 3*time.Minute, c.EntriesTTL)
	assert.Equal(t, 10*time.Minute, c.SettingsTTL)
	assert.Equal(t, 7, c.RetentionDays)
	assert.Equal(t, 5, c.MigrationChunkSize)
	assert.Equal(t, 5<<20, c.LocalQuotaBytes)
	assert.Equal(t, ":50061", c.HealthAddr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.RemoteURL)
	assert.Empty(t, c.S3Bucket)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, "nutrilog.db", c.LocalDBPath)
	assert.Equal(t, 3*time.Minute, c.EntriesTTL)
	assert.Equal(t, 7, c.RetentionDays)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"local_db_path":  "from-json.db",
		"retention_days": 14,
	})
	os.Args = []string{"testbin", "-c", path, "-d", "from-flag.db"}

	c := LoadConfig()

	assert.Equal(t, "from-flag.db", c.LocalDBPath)
	assert.Equal(t, 14, c.RetentionDays)
}
