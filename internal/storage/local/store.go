package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
)

// Namespace keys of the kv table.
const (
	KeyEntries     = "entries"
	KeySummaries   = "summaries"
	KeySettings    = "settings"
	KeyProfile     = "profile"
	KeyStorageMode = "storage_mode"
)

// DataKeys are the namespaces holding user data. KeyStorageMode is not one
// of them.
var DataKeys = []string{KeyEntries, KeySummaries, KeySettings, KeyProfile}

// DefaultQuotaBytes is the largest value a single key may hold.
const DefaultQuotaBytes = 5 << 20

// Store is the local storage.Backend.
type Store struct {
	kv    *KVRepository
	quota int

	// mu serialises read-modify-write cycles on a namespace.
	mu sync.Mutex
}

var _ storage.Backend = (*Store)(nil)

// NewStore returns a Store over kv. quotaBytes <= 0 disables the quota.
func NewStore(kv *KVRepository, quotaBytes int) *Store {
	return &Store{kv: kv, quota: quotaBytes}
}

func (s *Store) Name() string { return "local" }

// load decodes key into dst. It reports false when the key is absent.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, classify("local.load "+key, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("local.load %s: decode: %w", key, err)
	}
	return true, nil
}

// store encodes v under key. Oversized values are refused before writing.
func (s *Store) store(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("local.store %s: encode: %w", key, err)
	}
	if s.quota > 0 && len(raw) > s.quota {
		return common.NewStoreError(common.ErrDeviceStorageFull, "local.store "+key,
			fmt.Errorf("value of %d bytes exceeds quota of %d", len(raw), s.quota))
	}
	return classify("local.store "+key, s.kv.Set(ctx, key, raw))
}

func (s *Store) entries(ctx context.Context) ([]models.Entry, error) {
	var all []models.Entry
	if _, err := s.load(ctx, KeyEntries, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func sameEntry(a, b *models.Entry) bool { return a.ID == b.ID && a.UserID == b.UserID }

func (s *Store) UpsertEntries(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.entries(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		replaced := false
		for j := range all {
			if sameEntry(&all[j], &entries[i]) {
				all[j] = entries[i]
				replaced = true
				break
			}
		}
		if !replaced {
			all = append(all, entries[i])
		}
	}
	return s.store(ctx, KeyEntries, all)
}

func (s *Store) ListEntries(ctx context.Context, userID string, p storage.Projection) ([]models.Entry, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entry, 0, len(all))
	for _, e := range all {
		if e.UserID != userID {
			continue
		}
		if p == storage.Lite {
			e = e.Lite()
		}
		out = append(out, e)
	}
	models.SortNewestFirst(out)
	return out, nil
}

func (s *Store) ListEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entry, 0)
	for _, e := range all {
		if e.UserID == userID && e.Date == date {
			out = append(out, e.Lite())
		}
	}
	models.SortNewestFirst(out)
	return out, nil
}

// ExportEntriesForDate equals ListEntriesForDate; local listings are not capped.
func (s *Store) ExportEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error) {
	return s.ListEntriesForDate(ctx, userID, date)
}

func (s *Store) ListAggregates(ctx context.Context, userID string) ([]models.EntryAggregate, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.EntryAggregate, 0, len(all))
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e.Aggregate())
		}
	}
	return out, nil
}

func (s *Store) GetImage(ctx context.Context, userID, id string) (*string, error) {
	all, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if e.ID == id && e.UserID == userID {
			return e.Image, nil
		}
	}
	return nil, nil
}

// deleteWhere drops matching entries and rewrites the namespace only when
// something was removed.
func (s *Store) deleteWhere(ctx context.Context, match func(*models.Entry) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.entries(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for i := range all {
		if !match(&all[i]) {
			kept = append(kept, all[i])
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.store(ctx, KeyEntries, kept)
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	return s.deleteWhere(ctx, func(e *models.Entry) bool {
		return e.ID == id && e.UserID == userID
	})
}

func (s *Store) DeleteEntriesForDate(ctx context.Context, userID, date string) error {
	return s.deleteWhere(ctx, func(e *models.Entry) bool {
		return e.Date == date && e.UserID == userID
	})
}

func (s *Store) summaries(ctx context.Context) ([]models.DailySummary, error) {
	var all []models.DailySummary
	if _, err := s.load(ctx, KeySummaries, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Store) UpsertSummaries(ctx context.Context, summaries []models.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.summaries(ctx)
	if err != nil {
		return err
	}
	for _, sum := range summaries {
		replaced := false
		for j := range all {
			if all[j].UserID == sum.UserID && all[j].Date == sum.Date {
				all[j] = sum
				replaced = true
				break
			}
		}
		if !replaced {
			all = append(all, sum)
		}
	}
	return s.store(ctx, KeySummaries, all)
}

func (s *Store) ListSummaries(ctx context.Context, userID string) ([]models.DailySummary, error) {
	all, err := s.summaries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.DailySummary, 0, len(all))
	for _, sum := range all {
		if sum.UserID == userID {
			out = append(out, sum)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) settings(ctx context.Context) (map[string]models.Settings, error) {
	m := map[string]models.Settings{}
	if _, err := s.load(ctx, KeySettings, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	m, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	st, ok := m[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) updateSettings(ctx context.Context, userID string, fn func(*models.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.settings(ctx)
	if err != nil {
		return err
	}
	st := m[userID]
	st.UserID = userID
	fn(&st)
	m[userID] = st
	return s.store(ctx, KeySettings, m)
}

func (s *Store) SetDailyGoal(ctx context.Context, userID string, goal int) error {
	return s.updateSettings(ctx, userID, func(st *models.Settings) { st.DailyGoal = goal })
}

func (s *Store) SetOnboarded(ctx context.Context, userID string, onboarded bool) error {
	return s.updateSettings(ctx, userID, func(st *models.Settings) { st.Onboarded = onboarded })
}

func (s *Store) profiles(ctx context.Context) (map[string]models.Profile, error) {
	m := map[string]models.Profile{}
	if _, err := s.load(ctx, KeyProfile, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m, err := s.profiles(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := m[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.profiles(ctx)
	if err != nil {
		return err
	}
	m[profile.UserID] = *profile
	return s.store(ctx, KeyProfile, m)
}
