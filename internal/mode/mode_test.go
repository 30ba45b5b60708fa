package mode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPrefs struct {
	value  string
	writes int
	err    error
}

func (m *memPrefs) Preference(context.Context) (string, error) { return m.value, m.err }

func (m *memPrefs) SetPreference(_ context.Context, v string) error {
	m.value = v
	m.writes++
	return nil
}

const goodURL = "postgres://nutrilog@db.example.com:5432/nutrilog"

func TestConfigured(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want bool
	}{
		{"postgres url and key", goodURL, "k", true},
		{"postgresql scheme", "postgresql://db.example.com/n", "k", true},
		{"missing key", goodURL, "", false},
		{"blank key", goodURL, "  ", false},
		{"missing url", "", "k", false},
		{"not a url", "db.example.com", "k", false},
		{"wrong scheme", "https://db.example.com", "k", false},
		{"no host", "postgres:///n", "k", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewResolver(tt.url, tt.key, &memPrefs{}).Configured())
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured is local and not persisted", func(t *testing.T) {
		p := &memPrefs{}
		m, err := NewResolver("", "", p).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Local, m)
		assert.Equal(t, 0, p.writes)
	})

	t.Run("configured is cloud and persisted", func(t *testing.T) {
		p := &memPrefs{}
		m, err := NewResolver(goodURL, "k", p).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Cloud, m)
		assert.Equal(t, "cloud", p.value)
	})

	t.Run("explicit local preference wins", func(t *testing.T) {
		p := &memPrefs{value: "local"}
		m, err := NewResolver(goodURL, "k", p).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Local, m)
		assert.Equal(t, 0, p.writes)
	})

	t.Run("memoised for the resolver lifetime", func(t *testing.T) {
		p := &memPrefs{}
		r := NewResolver(goodURL, "k", p)
		m, _ := r.Resolve(ctx)
		require.Equal(t, Cloud, m)

		require.NoError(t, r.SetPreference(ctx, Local))
		m, err := r.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Cloud, m)

		next, err := NewResolver(goodURL, "k", p).Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Local, next, "switch applies on next start")
	})

	t.Run("preference read failure is not memoised", func(t *testing.T) {
		p := &memPrefs{err: errors.New("disk")}
		r := NewResolver(goodURL, "k", p)
		_, err := r.Resolve(ctx)
		require.Error(t, err)

		p.err = nil
		m, err := r.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, Cloud, m)
	})
}

func TestParse(t *testing.T) {
	m, err := Parse(" Cloud ")
	require.NoError(t, err)
	assert.Equal(t, Cloud, m)

	_, err = Parse("hybrid")
	require.Error(t, err)
	require.Error(t, NewResolver("", "", &memPrefs{}).SetPreference(context.Background(), "hybrid"))
}
