package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/nutrilog/internal/flagx"
)

// parseFlags populates Config fields from the short flags listed in the
// package doc. Unknown flags are filtered out first so subcommands keep
// their own arguments.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-k", "-t", "-s", "-n", "-l", "-a"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "local database path")
	fs.StringVar(&cfg.RemoteURL, "r", cfg.RemoteURL, "remote backend URL")
	fs.StringVar(&cfg.RemoteKey, "k", cfg.RemoteKey, "remote backend credential")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.TokenSecret, "s", cfg.TokenSecret, "access token secret")
	fs.IntVar(&cfg.RetentionDays, "n", cfg.RetentionDays, "archival retention (in days)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.HealthAddr, "a", cfg.HealthAddr, "health endpoint address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
