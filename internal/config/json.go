package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nutrilog/internal/flagx"
	"github.com/dmitrijs2005/nutrilog/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Absent fields
// leave the current value untouched.
type JsonConfig struct {
	LocalDBPath        string         `json:"local_db_path"`
	RemoteURL          string         `json:"remote_url"`
	RemoteKey          string         `json:"remote_key"`
	RemoteAutoMigrate  *bool          `json:"remote_auto_migrate"`
	RemoteListLimit    int            `json:"remote_list_limit"`
	AccessToken        string         `json:"access_token"`
	TokenSecret        string         `json:"token_secret"`
	EntriesTTL         timex.Duration `json:"entries_ttl"`
	SettingsTTL        timex.Duration `json:"settings_ttl"`
	RetentionDays      int            `json:"retention_days"`
	MigrationChunkSize int            `json:"migration_chunk_size"`
	LocalQuotaBytes    int            `json:"local_quota_bytes"`
	ArchiveInterval    timex.Duration `json:"archive_interval"`
	HealthAddr         string         `json:"health_addr"`
	LogLevel           string         `json:"log_level"`
	LogFile            string         `json:"log_file"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Prefix           string         `json:"s3_prefix"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
}

// parseJson overlays Config with the file named by -c/-config, if any.
// Read or decode failures panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	setStr(&cfg.LocalDBPath, jc.LocalDBPath)
	setStr(&cfg.RemoteURL, jc.RemoteURL)
	setStr(&cfg.RemoteKey, jc.RemoteKey)
	if jc.RemoteAutoMigrate != nil {
		cfg.RemoteAutoMigrate = *jc.RemoteAutoMigrate
	}
	setInt(&cfg.RemoteListLimit, jc.RemoteListLimit)
	setStr(&cfg.AccessToken, jc.AccessToken)
	setStr(&cfg.TokenSecret, jc.TokenSecret)
	if jc.EntriesTTL.Duration != 0 {
		cfg.EntriesTTL = jc.EntriesTTL.Duration
	}
	if jc.SettingsTTL.Duration != 0 {
		cfg.SettingsTTL = jc.SettingsTTL.Duration
	}
	setInt(&cfg.RetentionDays, jc.RetentionDays)
	setInt(&cfg.MigrationChunkSize, jc.MigrationChunkSize)
	setInt(&cfg.LocalQuotaBytes, jc.LocalQuotaBytes)
	if jc.ArchiveInterval.Duration != 0 {
		cfg.ArchiveInterval = jc.ArchiveInterval.Duration
	}
	setStr(&cfg.HealthAddr, jc.HealthAddr)
	setStr(&cfg.LogLevel, jc.LogLevel)
	setStr(&cfg.LogFile, jc.LogFile)
	setStr(&cfg.S3Bucket, jc.S3Bucket)
	setStr(&cfg.S3Prefix, jc.S3Prefix)
	setStr(&cfg.S3Region, jc.S3Region)
	setStr(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setStr(&cfg.S3AccessKey, jc.S3AccessKey)
	setStr(&cfg.S3SecretKey, jc.S3SecretKey)
}
