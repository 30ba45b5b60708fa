// Package summary computes daily rollups and sweeps entries older than the
// retention window into archived summaries.
//
// A date with live entries is always reported from those entries, even when
// an archived summary for it exists. That overlap only appears after a sweep
// stopped between writing the summary and deleting the entries; the next
// sweep overwrites the summary from the live rows and finishes the delete.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/repository"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
	"github.com/dmitrijs2005/nutrilog/internal/timex"
)

const DefaultRetentionDays = 7

// ColdStore receives a copy of a day's entries before they are deleted.
type ColdStore interface {
	Put(ctx context.Context, userID, date string, entries []models.Entry) error
}

type Options struct {
	EntriesTTL time.Duration
	Now        func() time.Time
	// Cold is optional.
	Cold ColdStore
}

type Engine struct {
	backend storage.Backend
	cache   *cache.Cache
	users   identity.Provider
	log     logging.Logger
	opts    Options
}

func New(backend storage.Backend, c *cache.Cache, users identity.Provider, log logging.Logger, opts Options) *Engine {
	if opts.EntriesTTL <= 0 {
		opts.EntriesTTL = repository.DefaultEntriesTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{backend: backend, cache: c, users: users, log: log, opts: opts}
}

func (e *Engine) user(ctx context.Context) (*models.User, error) {
	u, err := e.users.CurrentUser(ctx)
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

// Rollup sums aggregates per date. The result is not archived.
func Rollup(userID string, aggs []models.EntryAggregate) map[string]models.DailySummary {
	out := make(map[string]models.DailySummary)
	for _, a := range aggs {
		s, ok := out[a.Date]
		if !ok {
			s = models.DailySummary{UserID: userID, Date: a.Date}
		}
		s.Add(a)
		out[a.Date] = s
	}
	return out
}

// Merge returns the live rollups plus the archived summaries of dates that
// have no live rows, newest date first.
func Merge(live map[string]models.DailySummary, archived []models.DailySummary) []models.DailySummary {
	out := make([]models.DailySummary, 0, len(live)+len(archived))
	for _, s := range live {
		out = append(out, s)
	}
	for _, s := range archived {
		if _, ok := live[s.Date]; !ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// SummariesLite returns one summary per day for the current user.
func (e *Engine) SummariesLite(ctx context.Context) ([]models.DailySummary, error) {
	u, err := e.user(ctx)
	if err != nil {
		return nil, err
	}

	out, err := cache.GetOrCompute(ctx, e.cache, repository.SummariesKey(u.ID), e.opts.EntriesTTL,
		func(ctx context.Context) ([]models.DailySummary, error) {
			aggs, err := e.backend.ListAggregates(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			archived, err := e.backend.ListSummaries(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			return Merge(Rollup(u.ID, aggs), archived), nil
		})
	if err != nil {
		if errors.Is(err, common.ErrRemoteSchemaMissing) {
			e.log.Warn(ctx, "remote schema missing, serving empty result", "op", "summaries", "error", err)
			return []models.DailySummary{}, nil
		}
		return nil, err
	}

	cp := make([]models.DailySummary, len(out))
	copy(cp, out)
	return cp, nil
}

// DateError is a date the sweep had to leave alone.
type DateError struct {
	Date string
	Err  error
}

type Report struct {
	Cutoff   string
	Archived []string
	Entries  int
	Skipped  []DateError
}

// ArchiveOlderThan replaces the entries of every date before today minus
// retentionDays with an archived summary. A date that fails is logged,
// reported in Skipped and left intact.
func (e *Engine) ArchiveOlderThan(ctx context.Context, retentionDays int) (Report, error) {
	if retentionDays < 0 {
		return Report{}, fmt.Errorf("summary: negative retention %d", retentionDays)
	}
	u, err := e.user(ctx)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Cutoff: timex.CutoffDate(e.opts.Now(), retentionDays, models.DateLayout)}
	log := e.log.With("op", "archive", "user", u.ID, "cutoff", rep.Cutoff)

	aggs, err := e.backend.ListAggregates(ctx, u.ID)
	if err != nil {
		return rep, fmt.Errorf("summary: list aggregates: %w", err)
	}

	counts := make(map[string]int)
	var old []models.EntryAggregate
	for _, a := range aggs {
		if a.Date < rep.Cutoff {
			old = append(old, a)
			counts[a.Date]++
		}
	}
	rollups := Rollup(u.ID, old)

	dates := make([]string, 0, len(rollups))
	for d := range rollups {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		if err := e.archiveDate(ctx, u.ID, rollups[d]); err != nil {
			log.Error(ctx, "archive date failed", "date", d, "error", err)
			rep.Skipped = append(rep.Skipped, DateError{Date: d, Err: err})
			continue
		}
		rep.Archived = append(rep.Archived, d)
		rep.Entries += counts[d]
	}

	repository.InvalidateEntries(e.cache)
	log.Info(ctx, "archive finished", "dates", len(rep.Archived), "entries", rep.Entries, "skipped", len(rep.Skipped))
	return rep, nil
}

func (e *Engine) archiveDate(ctx context.Context, userID string, s models.DailySummary) error {
	if e.opts.Cold != nil {
		entries, err := e.backend.ExportEntriesForDate(ctx, userID, s.Date)
		if err != nil {
			return fmt.Errorf("export entries: %w", err)
		}
		if err := e.opts.Cold.Put(ctx, userID, s.Date, entries); err != nil {
			return err
		}
	}

	s.Archived = true
	if err := e.backend.UpsertSummaries(ctx, []models.DailySummary{s}); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	if err := e.backend.DeleteEntriesForDate(ctx, userID, s.Date); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}
