// Package app wires configuration, storage, cache and engines into one
// process. Both the CLI and the maintenance daemon start from New.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/coldstore"
	"github.com/dmitrijs2005/nutrilog/internal/config"
	"github.com/dmitrijs2005/nutrilog/internal/health"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/migration"
	"github.com/dmitrijs2005/nutrilog/internal/mode"
	"github.com/dmitrijs2005/nutrilog/internal/repository"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
	"github.com/dmitrijs2005/nutrilog/internal/storage/local"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote"
	"github.com/dmitrijs2005/nutrilog/internal/summary"
)

// ErrRemoteNotConfigured is returned by commands that need a remote.
var ErrRemoteNotConfigured = errors.New("remote backend not configured")

// seams for tests
var (
	newLogger  = func(o logging.Options) logging.Logger { return logging.New(o) }
	openRemote = remote.Open
)

type App struct {
	config *config.Config
	logger logging.Logger

	localDB  *sql.DB
	remoteDB *sql.DB

	local    *local.Store
	remote   *remote.Store
	resolver *mode.Resolver
	mode     mode.Mode
	backend  storage.Backend
	users    identity.Provider
	cache    *cache.Cache

	entries   *repository.EntryRepository
	settings  *repository.SettingsRepository
	summaries *summary.Engine
	migration *migration.Engine
}

func New(ctx context.Context, c *config.Config) (*App, error) {
	logger := newLogger(logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	})

	a := &App{config: c, logger: logger, cache: cache.New()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	c := a.config

	db, err := local.Open(ctx, c.LocalDBPath)
	if err != nil {
		return fmt.Errorf("local db init error: %w", err)
	}
	a.localDB = db
	a.local = local.NewStore(local.NewKVRepository(db), c.LocalQuotaBytes)

	a.resolver = mode.NewResolver(c.RemoteURL, c.RemoteKey, a.local)
	if a.resolver.Configured() {
		rdb, err := openRemote(c.RemoteURL, c.RemoteKey)
		if err != nil {
			return fmt.Errorf("remote db init error: %w", err)
		}
		a.remoteDB = rdb
		a.remote = remote.New(rdb, remote.Options{ListLimit: c.RemoteListLimit})
	}

	a.mode, err = a.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve mode: %w", err)
	}

	var remoteBackend storage.Backend
	if a.mode == mode.Cloud {
		if c.RemoteAutoMigrate {
			if err := remote.RunMigrations(ctx, a.remoteDB); err != nil {
				return err
			}
		}
		a.backend = a.remote
		remoteBackend = a.remote
		a.users = identity.NewToken(c.AccessToken, []byte(c.TokenSecret))
	} else {
		a.backend = a.local
		a.users = identity.Local{}
	}

	ropts := repository.Options{EntriesTTL: c.EntriesTTL, SettingsTTL: c.SettingsTTL}
	a.entries = repository.NewEntryRepository(a.backend, a.cache, a.users, a.logger, ropts)
	a.settings = repository.NewSettingsRepository(a.backend, a.cache, a.users, a.logger, ropts)

	sopts := summary.Options{EntriesTTL: c.EntriesTTL}
	if c.S3Bucket != "" {
		cold, err := coldstore.New(ctx, coldstore.Options{
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return err
		}
		sopts.Cold = cold
	}
	a.summaries = summary.New(a.backend, a.cache, a.users, a.logger, sopts)
	a.migration = migration.New(a.local, a.resolver, remoteBackend, a.users, a.cache, a.logger, c.MigrationChunkSize)

	a.logger.Info(ctx, "storage ready", "mode", a.mode, "backend", a.backend.Name())
	return nil
}

// Mode is the mode resolved at startup.
func (a *App) Mode() mode.Mode { return a.mode }

func (a *App) Entries() *repository.EntryRepository    { return a.entries }
func (a *App) Settings() *repository.SettingsRepository { return a.settings }
func (a *App) Summaries() *summary.Engine               { return a.summaries }

// Checker returns what the health service should watch.
func (a *App) Checker() health.Checker {
	if a.mode == mode.Cloud {
		return a.remote
	}
	return health.AlwaysOK
}

func (a *App) Close() error {
	var errs []error
	if a.remoteDB != nil {
		errs = append(errs, a.remoteDB.Close())
	}
	if a.localDB != nil {
		errs = append(errs, a.localDB.Close())
	}
	return errors.Join(errs...)
}
