package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
)

// EntryRepository serves food entries of the current user.
type EntryRepository struct {
	base
}

func NewEntryRepository(backend storage.Backend, c *cache.Cache, users identity.Provider, log logging.Logger, opts Options) *EntryRepository {
	return &EntryRepository{base{backend: backend, cache: c, users: users, log: log, opts: opts.withDefaults()}}
}

// Save assigns the entry to the current user, normalises it and upserts it
// by ID. e is updated in place with the stored form.
func (r *EntryRepository) Save(ctx context.Context, e *models.Entry) error {
	u, err := r.user(ctx)
	if err != nil {
		return err
	}
	e.UserID = u.ID
	if err := e.Normalize(r.opts.Now()); err != nil {
		return err
	}
	if err := r.backend.UpsertEntries(ctx, []models.Entry{*e}); err != nil {
		return err
	}
	InvalidateEntries(r.cache)
	return nil
}

func (r *EntryRepository) list(ctx context.Context, p storage.Projection, key func(string) string) ([]models.Entry, error) {
	u, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := cache.GetOrCompute(ctx, r.cache, key(u.ID), r.opts.EntriesTTL,
		func(ctx context.Context) ([]models.Entry, error) {
			return r.backend.ListEntries(ctx, u.ID, p)
		})
	if err != nil {
		if r.degraded(ctx, "list."+p.String(), err) {
			return []models.Entry{}, nil
		}
		return nil, err
	}
	return cloneEntries(entries), nil
}

// List returns the full projection, newest first.
func (r *EntryRepository) List(ctx context.Context) ([]models.Entry, error) {
	return r.list(ctx, storage.Full, FullKey)
}

// ListLite returns entries without image and recognition snapshot.
func (r *EntryRepository) ListLite(ctx context.Context) ([]models.Entry, error) {
	return r.list(ctx, storage.Lite, LiteKey)
}

// ListForDate returns the lite entries of one day. Not cached.
func (r *EntryRepository) ListForDate(ctx context.Context, date string) ([]models.Entry, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q", models.ErrInvalidEntry, date)
	}
	u, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.backend.ListEntriesForDate(ctx, u.ID, date)
	if err != nil {
		if r.degraded(ctx, "list_for_date", err) {
			return []models.Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

// GetImage returns the image of an owned entry, or nil.
func (r *EntryRepository) GetImage(ctx context.Context, id string) (*string, error) {
	u, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	img, err := r.backend.GetImage(ctx, u.ID, id)
	if err != nil {
		if r.degraded(ctx, "get_image", err) {
			return nil, nil
		}
		return nil, err
	}
	return img, nil
}

// Delete removes an owned entry. Missing or foreign ids are a no-op.
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	u, err := r.user(ctx)
	if err != nil {
		return err
	}
	if err := r.backend.DeleteEntry(ctx, u.ID, id); err != nil {
		return err
	}
	InvalidateEntries(r.cache)
	return nil
}

func cloneEntries(in []models.Entry) []models.Entry {
	out := make([]models.Entry, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
