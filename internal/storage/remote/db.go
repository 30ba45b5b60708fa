package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nutrilog/internal/storage/remote/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Open connects to the PostgreSQL database at url. A non-empty key replaces
// the password of the URL. No round-trip is made.
func Open(url, key string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if key != "" {
		cfg.Password = key
	}
	return stdlib.OpenDB(*cfg), nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations creates the remote tables with the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return classify("remote.migrate", err)
	}
	return nil
}
