package config

import "time"

// Config holds runtime settings for the storage layer, the CLI and the
// maintenance daemon.
//
// Fields:
//   - LocalDBPath: SQLite file backing the local store.
//   - RemoteURL / RemoteKey: remote backend endpoint and credential. Both must
//     be present and well formed for cloud mode.
//   - AccessToken / TokenSecret: identity for cloud mode.
//   - EntriesTTL / SettingsTTL: cache lifetimes per data class.
//   - RemoteListLimit: bounded result size for remote list queries.
//   - RetentionDays: archival window; older days are rolled up.
//   - MigrationChunkSize: entries per upload chunk during migration.
//   - LocalQuotaBytes: largest value a single local key may hold.
//   - S3*: optional cold archive for swept entries; empty bucket disables it.
type Config struct {
	LocalDBPath string

	RemoteURL         string
	RemoteKey         string
	RemoteAutoMigrate bool
	RemoteListLimit   int

	AccessToken string
	TokenSecret string

	EntriesTTL  time.Duration
	SettingsTTL time.Duration

	RetentionDays      int
	MigrationChunkSize int
	LocalQuotaBytes    int

	ArchiveInterval time.Duration
	HealthAddr      string

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with defaults suitable for a single device.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "nutrilog.db"
	c.RemoteListLimit = 200
	c.EntriesTTL = 3 * time.Minute
	c.SettingsTTL = 10 * time.Minute
	c.RetentionDays = 7
	c.MigrationChunkSize = 5
	c.LocalQuotaBytes = 5 << 20
	c.ArchiveInterval = 6 * time.Hour
	c.HealthAddr = ":50061"
	c.LogLevel = "info"
	c.LogMaxSizeMB = 10
	c.LogMaxBackups = 3
	c.LogMaxAgeDays = 28
	c.S3Prefix = "archive"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, then env, JSON and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// ValueFlags lists every flag that takes a value, for flagx.Positional.
var ValueFlags = []string{"-c", "-config", "-env", "-d", "-r", "-k", "-t", "-s", "-n", "-l", "-a"}
