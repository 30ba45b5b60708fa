package local

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/nutrilog/internal/models"
)

// Snapshot is everything the local store holds, across all user keys.
type Snapshot struct {
	Entries   []models.Entry
	Summaries []models.DailySummary
	Settings  map[string]models.Settings
	Profiles  map[string]models.Profile
}

// Empty reports whether the snapshot carries no user data.
func (s *Snapshot) Empty() bool {
	return len(s.Entries) == 0 && len(s.Summaries) == 0 && len(s.Settings) == 0 && len(s.Profiles) == 0
}

// SettingsUsers returns the settings user keys in sorted order.
func (s *Snapshot) SettingsUsers() []string { return sortedKeys(s.Settings) }

// ProfileUsers returns the profile user keys in sorted order.
func (s *Snapshot) ProfileUsers() []string { return sortedKeys(s.Profiles) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot reads every data namespace.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaries(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Entries: entries, Summaries: summaries, Settings: settings, Profiles: profiles}, nil
}

// Clear removes every data namespace in one statement. The mode preference
// survives.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return classify("local.clear", s.kv.Delete(ctx, DataKeys...))
}

// Preference returns the persisted mode preference, or "" when none.
func (s *Store) Preference(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, KeyStorageMode)
	if err != nil {
		return "", classify("local.preference", err)
	}
	return string(raw), nil
}

// SetPreference persists the mode preference.
func (s *Store) SetPreference(ctx context.Context, mode string) error {
	return classify("local.preference", s.kv.Set(ctx, KeyStorageMode, []byte(mode)))
}
