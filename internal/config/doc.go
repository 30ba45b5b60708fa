// Package config loads runtime configuration for nutrilog.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional .env file (-env, default ".env" when present) and NUTRILOG_*
//     environment variables; real environment variables win over the file.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   local SQLite database path
//	-r string   remote PostgreSQL URL (postgres://host:port/db)
//	-k string   remote credential
//	-t string   access token (HS256 JWT)
//	-s string   access token secret
//	-n int      archival retention, days
//	-l string   log level (debug, info, warn, error)
//	-a string   gRPC health endpoint address
//
// # JSON schema
//
// Durations use timex.Duration, so "3m" and integer nanoseconds both work:
//
//	{
//	  "local_db_path": "nutrilog.db",
//	  "remote_url": "postgres://db.example.com:5432/nutrilog",
//	  "entries_ttl": "3m",
//	  "settings_ttl": "10m",
//	  "retention_days": 7
//	}
package config
