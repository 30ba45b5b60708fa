// Package storage defines the capability set every persistence backend
// offers. The repository layer depends on Backend only; the local and remote
// implementations live in sub-packages and are chosen once at startup.
package storage

import (
	"context"

	"github.com/dmitrijs2005/nutrilog/internal/models"
)

// Projection selects the column subset returned by entry listings.
type Projection int

const (
	// Full includes the image payload and the recognition snapshot.
	Full Projection = iota
	// Lite omits the large fields.
	Lite
)

func (p Projection) String() string {
	if p == Lite {
		return "lite"
	}
	return "full"
}

// EntryStore persists food entries. Listings are ordered by timestamp,
// newest first. Every method is scoped to one user.
type EntryStore interface {
	// UpsertEntries inserts or replaces entries by ID. Entries must already
	// carry their owner.
	UpsertEntries(ctx context.Context, entries []models.Entry) error
	ListEntries(ctx context.Context, userID string, p Projection) ([]models.Entry, error)
	// ListEntriesForDate returns the lite projection of one calendar day.
	ListEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error)
	// ExportEntriesForDate is ListEntriesForDate without the list cap; it
	// sees every row DeleteEntriesForDate would remove.
	ExportEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error)
	ListAggregates(ctx context.Context, userID string) ([]models.EntryAggregate, error)
	// GetImage returns nil when the entry is absent, foreign or image-less.
	GetImage(ctx context.Context, userID, id string) (*string, error)
	// DeleteEntry is a no-op for missing or foreign ids.
	DeleteEntry(ctx context.Context, userID, id string) error
	DeleteEntriesForDate(ctx context.Context, userID, date string) error
}

// SummaryStore persists archived daily rollups keyed by user and date.
type SummaryStore interface {
	UpsertSummaries(ctx context.Context, summaries []models.DailySummary) error
	ListSummaries(ctx context.Context, userID string) ([]models.DailySummary, error)
}

// SettingsStore persists per-user settings and profile. Getters return
// nil, nil when nothing is stored.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
	SetDailyGoal(ctx context.Context, userID string, goal int) error
	SetOnboarded(ctx context.Context, userID string, onboarded bool) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
}

// Backend is a complete persistence backend.
type Backend interface {
	EntryStore
	SummaryStore
	SettingsStore
	// Name identifies the backend in logs ("local" or "remote").
	Name() string
}
