// Package mode decides whether a process runs against the local store or
// the remote backend. The decision is made once per Resolver.
package mode

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

type Mode string

const (
	Local Mode = "local"
	Cloud Mode = "cloud"
)

// Parse accepts "local" or "cloud", case-insensitively.
func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Local, Cloud:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// PreferenceStore persists the mode preference.
type PreferenceStore interface {
	Preference(ctx context.Context) (string, error)
	SetPreference(ctx context.Context, mode string) error
}

// Resolver picks the storage mode.
type Resolver struct {
	remoteURL string
	remoteKey string
	prefs     PreferenceStore

	mu       sync.Mutex
	resolved bool
	mode     Mode
}

func NewResolver(remoteURL, remoteKey string, prefs PreferenceStore) *Resolver {
	return &Resolver{remoteURL: remoteURL, remoteKey: remoteKey, prefs: prefs}
}

// Configured reports whether a well-formed remote endpoint and a credential
// are present.
func (r *Resolver) Configured() bool {
	if strings.TrimSpace(r.remoteKey) == "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(r.remoteURL))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "postgres" || u.Scheme == "postgresql"
}

// Resolve returns Cloud when the remote is configured and the stored
// preference is not Local. The first successful answer is memoised; with a
// configured remote it is also persisted. A failure to read the preference
// is returned and not memoised.
func (r *Resolver) Resolve(ctx context.Context) (Mode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return r.mode, nil
	}

	m := Local
	if r.Configured() {
		pref, err := r.prefs.Preference(ctx)
		if err != nil {
			return "", fmt.Errorf("read mode preference: %w", err)
		}
		if Mode(pref) != Local {
			m = Cloud
		}
		if Mode(pref) != m {
			if err := r.prefs.SetPreference(ctx, string(m)); err != nil {
				return "", fmt.Errorf("persist mode preference: %w", err)
			}
		}
	}

	r.mode, r.resolved = m, true
	return m, nil
}

// SetPreference records an explicit choice. It takes effect for the next
// Resolver; the current one keeps its answer.
func (r *Resolver) SetPreference(ctx context.Context, m Mode) error {
	if _, err := Parse(string(m)); err != nil {
		return err
	}
	return r.prefs.SetPreference(ctx, string(m))
}
