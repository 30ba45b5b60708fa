// Package repository is the read-through facade over the active backend:
// entry CRUD and queries, plus the settings and profile accessors.
//
// Reads go through the cache; writes go straight to the backend and then
// invalidate the affected keys. A read that hits a missing remote schema
// degrades to an empty answer with a warning. Writes always return the
// typed error.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
)

// Default cache lifetimes.
const (
	DefaultEntriesTTL  = 3 * time.Minute
	DefaultSettingsTTL = 10 * time.Minute
)

// Options tune the repositories. Zero values pick the defaults.
type Options struct {
	EntriesTTL  time.Duration
	SettingsTTL time.Duration
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.EntriesTTL <= 0 {
		o.EntriesTTL = DefaultEntriesTTL
	}
	if o.SettingsTTL <= 0 {
		o.SettingsTTL = DefaultSettingsTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// base holds what both repositories share.
type base struct {
	backend storage.Backend
	cache   *cache.Cache
	users   identity.Provider
	log     logging.Logger
	opts    Options
}

func (b *base) user(ctx context.Context) (*models.User, error) {
	u, err := b.users.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return nil, err
		}
		return nil, errors.Join(common.ErrNotAuthenticated, err)
	}
	if u == nil || u.ID == "" {
		return nil, common.ErrNotAuthenticated
	}
	return u, nil
}

// degraded reports whether a read error should be served as empty.
func (b *base) degraded(ctx context.Context, op string, err error) bool {
	if !errors.Is(err, common.ErrRemoteSchemaMissing) {
		return false
	}
	b.log.Warn(ctx, "remote schema missing, serving empty result", "op", op, "backend", b.backend.Name(), "error", err)
	return true
}
