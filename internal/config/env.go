package config

import (
	"os"
	"strconv"

	"github.com/dmitrijs2005/nutrilog/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with NUTRILOG_* variables. Values from the
// process environment take precedence over the .env file. A missing default
// .env is ignored; an explicit -env file that cannot be read panics.
func parseEnv(cfg *Config) {
	file := flagx.EnvFileFlags()
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	fromFile := map[string]string{}
	if _, err := os.Stat(file); err == nil || explicit {
		m, err := godotenv.Read(file)
		if err != nil {
			panic(err)
		}
		fromFile = m
	}

	get := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fromFile[key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	str("NUTRILOG_LOCAL_DB", &cfg.LocalDBPath)
	str("NUTRILOG_REMOTE_URL", &cfg.RemoteURL)
	str("NUTRILOG_REMOTE_KEY", &cfg.RemoteKey)
	str("NUTRILOG_ACCESS_TOKEN", &cfg.AccessToken)
	str("NUTRILOG_TOKEN_SECRET", &cfg.TokenSecret)
	str("NUTRILOG_LOG_LEVEL", &cfg.LogLevel)
	str("NUTRILOG_LOG_FILE", &cfg.LogFile)
	str("NUTRILOG_HEALTH_ADDR", &cfg.HealthAddr)
	str("NUTRILOG_S3_BUCKET", &cfg.S3Bucket)
	str("NUTRILOG_S3_REGION", &cfg.S3Region)
	str("NUTRILOG_S3_ENDPOINT", &cfg.S3BaseEndpoint)
	str("NUTRILOG_S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("NUTRILOG_S3_SECRET_KEY", &cfg.S3SecretKey)
	num("NUTRILOG_RETENTION_DAYS", &cfg.RetentionDays)

	if v, ok := get("NUTRILOG_REMOTE_AUTO_MIGRATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.RemoteAutoMigrate = b
	}
}
