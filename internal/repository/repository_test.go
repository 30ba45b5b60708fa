package repository

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/identity/identitytest"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
	"github.com/dmitrijs2005/nutrilog/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var user = identitytest.Static{User: &models.User{ID: "u1", Email: "u1@example.com"}}

// countingBackend counts list calls reaching the backend.
type countingBackend struct {
	storage.Backend
	lists int32
}

func (c *countingBackend) ListEntries(ctx context.Context, userID string, p storage.Projection) ([]models.Entry, error) {
	atomic.AddInt32(&c.lists, 1)
	return c.Backend.ListEntries(ctx, userID, p)
}

func backends(t *testing.T) map[string]func() storage.Backend {
	return map[string]func() storage.Backend{
		"local":  func() storage.Backend { return storagetest.NewLocal(t, 0) },
		"remote": func() storage.Backend { return storagetest.NewRemote(t, true) },
	}
}

func newEntries(b storage.Backend, users identity.Provider) *EntryRepository {
	return NewEntryRepository(b, cache.New(), users, logging.Nop(), Options{})
}

func TestSave_IdempotentUpsert(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := newEntries(mk(), user)
			ctx := context.Background()

			e := &models.Entry{ID: "same", Timestamp: "2026-03-04T08:00:00Z", Label: "first", Calories: 100}
			require.NoError(t, r.Save(ctx, e))
			assert.Equal(t, "u1", e.UserID)

			e2 := &models.Entry{ID: "same", Timestamp: "2026-03-04T09:30:00Z", Label: "second", Calories: 250, Protein: 20}
			require.NoError(t, r.Save(ctx, e2))

			got, err := r.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "second", got[0].Label)
			assert.Equal(t, 250, got[0].Calories)
			assert.Equal(t, 20, got[0].Protein)
			assert.Equal(t, "09:30", got[0].TimeOfDay)
		})
	}
}

func TestSave_OverwritesOwner(t *testing.T) {
	r := newEntries(storagetest.NewLocal(t, 0), user)

	e := &models.Entry{UserID: "someone-else", Calories: 1}
	require.NoError(t, r.Save(context.Background(), e))
	assert.Equal(t, "u1", e.UserID)
	assert.NotEmpty(t, e.ID)
	assert.NotEmpty(t, e.Date)
}

func TestInvalidationBeatsTTL(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cb := &countingBackend{Backend: mk()}
			r := NewEntryRepository(cb, cache.New(), user, logging.Nop(), Options{EntriesTTL: time.Hour})
			ctx := context.Background()

			got, err := r.ListLite(ctx)
			require.NoError(t, err)
			require.Empty(t, got)
			_, _ = r.ListLite(ctx)
			require.EqualValues(t, 1, cb.lists, "second read is a cache hit")

			require.NoError(t, r.Save(ctx, &models.Entry{ID: "a", Timestamp: "2026-03-04T08:00:00Z", Calories: 10}))
			got, err = r.ListLite(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)

			require.NoError(t, r.Delete(ctx, "a"))
			got, err = r.ListLite(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestListAndListLiteUseSeparateKeys(t *testing.T) {
	r := newEntries(storagetest.NewLocal(t, 0), user)
	ctx := context.Background()

	img := "img"
	require.NoError(t, r.Save(ctx, &models.Entry{ID: "a", Image: &img, AISnapshot: []byte(`{}`)}))

	full, err := r.List(ctx)
	require.NoError(t, err)
	lite, err := r.ListLite(ctx)
	require.NoError(t, err)

	require.NotNil(t, full[0].Image)
	assert.Nil(t, lite[0].Image)
	assert.Nil(t, lite[0].AISnapshot)
}

func TestList_CallerCannotCorruptCache(t *testing.T) {
	r := newEntries(storagetest.NewLocal(t, 0), user)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, &models.Entry{
		ID:          "a",
		Label:       "oats",
		Ingredients: []models.Ingredient{{Name: "oats", Grams: 40}},
	}))

	got, err := r.List(ctx)
	require.NoError(t, err)
	got[0].Label = "mutated"
	got[0].Ingredients[0].Name = "mutated"

	again, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "oats", again[0].Label)
	assert.Equal(t, "oats", again[0].Ingredients[0].Name)

	lite, err := r.ListLite(ctx)
	require.NoError(t, err)
	lite[0].Ingredients[0].Grams = 0
	lite, err = r.ListLite(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40.0, lite[0].Ingredients[0].Grams)
}

func TestSave_ForeignIDIsRejected(t *testing.T) {
	b := storagetest.NewRemote(t, true)
	ctx := context.Background()
	owner := newEntries(b, user)
	require.NoError(t, owner.Save(ctx, &models.Entry{ID: "e1", Timestamp: "2026-03-04T08:00:00Z", Calories: 100}))

	intruder := newEntries(b, identitytest.User("u2"))
	err := intruder.Save(ctx, &models.Entry{ID: "e1", Timestamp: "2026-03-04T08:00:00Z", Calories: 999})
	require.ErrorIs(t, err, common.ErrRemotePermissionDenied)

	got, err := owner.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Calories)
}

func TestRemoteListIsBounded(t *testing.T) {
	b := storagetest.NewRemote(t, true)
	r := newEntries(b, user)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := make([]models.Entry, 0, 500)
	for i := 0; i < 500; i++ {
		ts := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		batch = append(batch, storagetest.Entry(t, fmt.Sprintf("e%03d", i), "u1", ts, 1, 0, 0, 0))
	}
	require.NoError(t, b.UpsertEntries(ctx, batch))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 200)
	assert.Equal(t, "e499", got[0].ID)
	assert.Equal(t, "e300", got[199].ID)
}

func TestLocalQuotaSurfacesDeviceStorageFull(t *testing.T) {
	b := storagetest.NewLocal(t, 4096)
	r := newEntries(b, user)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Entry{ID: "small", Calories: 1}))
	before, err := b.ListEntries(ctx, "u1", storage.Full)
	require.NoError(t, err)

	big := strings.Repeat("A", 8192)
	err = r.Save(ctx, &models.Entry{ID: "big", Image: &big})
	require.ErrorIs(t, err, common.ErrDeviceStorageFull)
	assert.NotErrorIs(t, err, common.ErrRemoteBackend)

	after, err := b.ListEntries(ctx, "u1", storage.Full)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no partial write")
}

func TestMissingSchema_ReadsDegradeWritesFail(t *testing.T) {
	r := newEntries(storagetest.NewRemote(t, false), user)
	ctx := context.Background()

	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = r.ListForDate(ctx, "2026-03-04")
	require.NoError(t, err)
	assert.Empty(t, got)

	img, err := r.GetImage(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, img)

	err = r.Save(ctx, &models.Entry{Calories: 1})
	require.ErrorIs(t, err, common.ErrRemoteSchemaMissing)
	err = r.Delete(ctx, "x")
	require.ErrorIs(t, err, common.ErrRemoteSchemaMissing)
}

func TestNotAuthenticated(t *testing.T) {
	r := newEntries(storagetest.NewLocal(t, 0), identitytest.Static{})
	ctx := context.Background()

	require.ErrorIs(t, r.Save(ctx, &models.Entry{}), common.ErrNotAuthenticated)
	_, err := r.List(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, err = r.GetImage(ctx, "a")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	require.ErrorIs(t, r.Delete(ctx, "a"), common.ErrNotAuthenticated)
}

func TestListForDateAndGetImage(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := newEntries(mk(), user)
			ctx := context.Background()

			img := "pic"
			require.NoError(t, r.Save(ctx, &models.Entry{ID: "a", Timestamp: "2026-03-04T08:00:00Z", Image: &img}))
			require.NoError(t, r.Save(ctx, &models.Entry{ID: "b", Timestamp: "2026-03-04T19:00:00Z"}))
			require.NoError(t, r.Save(ctx, &models.Entry{ID: "c", Timestamp: "2026-03-05T08:00:00Z"}))

			day, err := r.ListForDate(ctx, "2026-03-04")
			require.NoError(t, err)
			require.Len(t, day, 2)
			assert.Equal(t, "b", day[0].ID)
			assert.Nil(t, day[1].Image)

			_, err = r.ListForDate(ctx, "04/03/2026")
			require.ErrorIs(t, err, models.ErrInvalidEntry)

			got, err := r.GetImage(ctx, "a")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "pic", *got)

			other := newEntries(r.backend, identitytest.Static{User: &models.User{ID: "u2"}})
			got, err = other.GetImage(ctx, "a")
			require.NoError(t, err)
			assert.Nil(t, got, "owner-checked")
			require.NoError(t, other.Delete(ctx, "a"))

			all, err := r.ListLite(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3, "foreign delete is a no-op")
		})
	}
}
