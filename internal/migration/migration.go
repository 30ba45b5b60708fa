// Package migration uploads everything held on the device to the remote
// backend, then clears the device copy.
package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/mode"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
	"github.com/dmitrijs2005/nutrilog/internal/storage/local"
)

const DefaultChunkSize = 5

// Source is the device store being drained. *local.Store implements it.
type Source interface {
	Snapshot(ctx context.Context) (*local.Snapshot, error)
	Clear(ctx context.Context) error
}

type ModeResolver interface {
	Resolve(ctx context.Context) (mode.Mode, error)
}

type Engine struct {
	local  Source
	modes  ModeResolver
	remote storage.Backend
	users  identity.Provider
	cache  *cache.Cache
	log    logging.Logger
	chunk  int
}

func New(src Source, modes ModeResolver, remote storage.Backend, users identity.Provider, c *cache.Cache, log logging.Logger, chunkSize int) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Engine{local: src, modes: modes, remote: remote, users: users, cache: c, log: log, chunk: chunkSize}
}

type Report struct {
	Entries       int
	Summaries     int
	GoalPushed    bool
	ProfilePushed bool
	// Cleared is set once the device copy has been removed.
	Cleared bool
}

// MigrateLocalToRemote re-owns local data by the current user and uploads
// it. Entries go in chunks, each its own transaction; a failed chunk stops
// the run with a *common.SyncError. Uploads are upserts, so a rerun resumes
// where the last one stopped. Local data is cleared only when every step
// succeeded. The whole cache is dropped on return.
func (e *Engine) MigrateLocalToRemote(ctx context.Context) (Report, error) {
	var rep Report

	m, err := e.modes.Resolve(ctx)
	if err != nil {
		return rep, err
	}
	if m != mode.Cloud {
		return rep, common.ErrNotCloudMode
	}

	u, err := e.users.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNotAuthenticated) {
			err = errors.Join(common.ErrNotAuthenticated, err)
		}
		return rep, err
	}
	if u == nil || u.ID == "" {
		return rep, common.ErrNotAuthenticated
	}

	defer e.cache.Clear()
	log := e.log.With("op", "migrate", "user", u.ID)

	snap, err := e.local.Snapshot(ctx)
	if err != nil {
		return rep, fmt.Errorf("migration: read local: %w", err)
	}

	entries := make([]models.Entry, len(snap.Entries))
	for i, en := range snap.Entries {
		en.UserID = u.ID
		entries[i] = en
	}
	for off := 0; off < len(entries); off += e.chunk {
		end := min(off+e.chunk, len(entries))
		if err := e.remote.UpsertEntries(ctx, entries[off:end]); err != nil {
			log.Error(ctx, "entry chunk failed", "offset", off, "error", err)
			return rep, &common.SyncError{Offset: off, Err: err}
		}
		rep.Entries = end
	}

	if len(snap.Summaries) > 0 {
		sums := make([]models.DailySummary, len(snap.Summaries))
		for i, s := range snap.Summaries {
			s.UserID = u.ID
			sums[i] = s
		}
		if err := e.remote.UpsertSummaries(ctx, sums); err != nil {
			log.Error(ctx, "summaries upload failed", "error", err)
			return rep, fmt.Errorf("%w: summaries: %w", common.ErrSyncFailed, err)
		}
		rep.Summaries = len(sums)
	}

	var errs []error
	if keys := snap.SettingsUsers(); len(keys) > 0 {
		st := snap.Settings[keys[0]]
		if err := e.pushSettings(ctx, u.ID, st); err != nil {
			log.Error(ctx, "settings upload failed", "error", err)
			errs = append(errs, fmt.Errorf("settings: %w", err))
		} else {
			rep.GoalPushed = st.DailyGoal > 0
		}
	}
	if keys := snap.ProfileUsers(); len(keys) > 0 {
		p := snap.Profiles[keys[0]]
		p.UserID = u.ID
		if err := e.remote.SaveProfile(ctx, &p); err != nil {
			log.Error(ctx, "profile upload failed", "error", err)
			errs = append(errs, fmt.Errorf("profile: %w", err))
		} else {
			rep.ProfilePushed = true
		}
	}
	if len(errs) > 0 {
		return rep, fmt.Errorf("%w: %w", common.ErrSyncFailed, errors.Join(errs...))
	}

	if err := e.local.Clear(ctx); err != nil {
		return rep, fmt.Errorf("migration: clear local: %w", err)
	}
	rep.Cleared = true
	log.Info(ctx, "migration finished", "entries", rep.Entries, "summaries", rep.Summaries)
	return rep, nil
}

func (e *Engine) pushSettings(ctx context.Context, userID string, st models.Settings) error {
	if st.DailyGoal > 0 {
		if err := e.remote.SetDailyGoal(ctx, userID, st.DailyGoal); err != nil {
			return err
		}
	}
	if st.Onboarded {
		return e.remote.SetOnboarded(ctx, userID, true)
	}
	return nil
}
