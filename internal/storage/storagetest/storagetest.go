// Package storagetest builds throwaway backends for tests: the local store
// over in-memory SQLite, and the remote store over an in-memory SQLite
// database carrying the remote schema.
package storagetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage/local"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// NewLocal returns a local store with the given quota (<= 0 disables it).
func NewLocal(t testing.TB, quotaBytes int) *local.Store {
	t.Helper()
	db, err := local.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return local.NewStore(local.NewKVRepository(db), quotaBytes)
}

// NewRemote returns a remote store. Without withSchema the database is
// empty, as if the remote had never been set up.
func NewRemote(t testing.TB, withSchema bool) *remote.Store {
	t.Helper()
	return NewRemoteWithOptions(t, withSchema, remote.Options{})
}

// NewRemoteWithOptions is NewRemote with store options; placeholders are
// always rewritten for SQLite.
func NewRemoteWithOptions(t testing.TB, withSchema bool, opts remote.Options) *remote.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open remote stand-in: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if withSchema {
		goose.SetBaseFS(migrations.Migrations)
		if err := goose.SetDialect("sqlite3"); err != nil {
			t.Fatalf("goose dialect: %v", err)
		}
		if err := goose.UpContext(context.Background(), db, "."); err != nil {
			t.Fatalf("remote schema: %v", err)
		}
	}
	opts.QuestionPlaceholders = true
	return remote.New(db, opts)
}

// Entry returns a normalised entry for user at ts (RFC3339).
func Entry(t testing.TB, id, user, ts string, kcal, protein, carbs, fat int) models.Entry {
	t.Helper()
	e := models.Entry{ID: id, UserID: user, Timestamp: ts, Label: id,
		Calories: kcal, Protein: protein, Carbs: carbs, Fat: fat}
	if err := e.Normalize(time.Now()); err != nil {
		t.Fatalf("entry %s: %v", id, err)
	}
	return e
}
