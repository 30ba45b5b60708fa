package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/dmitrijs2005/nutrilog/internal/dbx"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
)

// DefaultListLimit caps list queries.
const DefaultListLimit = 200

// Column projections of food_entries.
const (
	fullColumns = `id, user_id, logged_at, date, time_of_day, label, calories, protein, carbs, fat, confidence, image, manual, ingredients, ai_snapshot`
	liteColumns = `id, logged_at, date, time_of_day, label, calories, protein, carbs, fat, confidence, manual, ingredients`
	aggColumns  = `id, date, calories, protein, carbs, fat`
)

// Options tune a Store.
type Options struct {
	// ListLimit caps list queries; <= 0 means DefaultListLimit.
	ListLimit int
	// QuestionPlaceholders rewrites $n placeholders to ? for engines that
	// only bind positional question marks.
	QuestionPlaceholders bool
}

// Store is the remote storage.Backend.
type Store struct {
	db       *sql.DB
	limit    int
	rebind   bool
	schemaOK atomic.Bool
}

var _ storage.Backend = (*Store)(nil)

// New returns a Store over db.
func New(db *sql.DB, opts Options) *Store {
	limit := opts.ListLimit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return &Store{db: db, limit: limit, rebind: opts.QuestionPlaceholders}
}

func (s *Store) Name() string { return "remote" }

// DB exposes the underlying handle, for migrations.
func (s *Store) DB() *sql.DB { return s.db }

var placeholder = regexp.MustCompile(`\$\d+`)

// q adapts a query to the configured placeholder style. Queries use each
// placeholder once, in order.
func (s *Store) q(query string) string {
	if !s.rebind {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

func epochMillis(ts string) (int64, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return 0, fmt.Errorf("%w: timestamp %q", models.ErrInvalidEntry, ts)
	}
	return t.UnixMilli(), nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

const upsertEntry = `
	INSERT INTO food_entries (id, user_id, logged_at, logged_at_epoch, date, time_of_day, label,
		calories, protein, carbs, fat, confidence, image, manual, ingredients, ai_snapshot)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		logged_at = excluded.logged_at,
		logged_at_epoch = excluded.logged_at_epoch,
		date = excluded.date,
		time_of_day = excluded.time_of_day,
		label = excluded.label,
		calories = excluded.calories,
		protein = excluded.protein,
		carbs = excluded.carbs,
		fat = excluded.fat,
		confidence = excluded.confidence,
		image = excluded.image,
		manual = excluded.manual,
		ingredients = excluded.ingredients,
		ai_snapshot = excluded.ai_snapshot
		WHERE food_entries.user_id = excluded.user_id`

// UpsertEntries writes all entries in one transaction. An id already owned
// by another user fails the whole batch with ErrRemotePermissionDenied.
func (s *Store) UpsertEntries(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for i := range entries {
			e := &entries[i]
			epoch, err := epochMillis(e.Timestamp)
			if err != nil {
				return err
			}
			ingredients := e.Ingredients
			if ingredients == nil {
				ingredients = []models.Ingredient{}
			}
			ing, err := json.Marshal(ingredients)
			if err != nil {
				return fmt.Errorf("encode ingredients: %w", err)
			}
			res, err := tx.ExecContext(ctx, s.q(upsertEntry),
				e.ID, e.UserID, e.Timestamp, epoch, e.Date, e.TimeOfDay, e.Label,
				e.Calories, e.Protein, e.Carbs, e.Fat, e.Confidence,
				e.Image, e.Manual, string(ing), nullableJSON(e.AISnapshot),
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			// the conflict guard skipped the row: the id belongs to someone else
			if n == 0 {
				return common.NewStoreError(common.ErrRemotePermissionDenied, "remote.upsert_entries",
					fmt.Errorf("entry %q is owned by another user", e.ID))
			}
		}
		return nil
	})
	if errors.Is(err, models.ErrInvalidEntry) {
		return err
	}
	return classify("remote.upsert_entries", err)
}

func decodeIngredients(raw []byte) ([]models.Ingredient, error) {
	out := []models.Ingredient{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	return out, nil
}

func scanEntry(rows *sql.Rows, p storage.Projection, userID string) (models.Entry, error) {
	var (
		e           models.Entry
		image       sql.NullString
		manual      sql.NullBool
		ingredients []byte
		snapshot    []byte
		err         error
	)
	if p == storage.Full {
		err = rows.Scan(&e.ID, &e.UserID, &e.Timestamp, &e.Date, &e.TimeOfDay, &e.Label,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.Confidence,
			&image, &manual, &ingredients, &snapshot)
	} else {
		err = rows.Scan(&e.ID, &e.Timestamp, &e.Date, &e.TimeOfDay, &e.Label,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.Confidence,
			&manual, &ingredients)
		e.UserID = userID
	}
	if err != nil {
		return e, err
	}

	if image.Valid {
		img := image.String
		e.Image = &img
	}
	if manual.Valid {
		m := manual.Bool
		e.Manual = &m
	}
	if len(snapshot) > 0 {
		e.AISnapshot = append(json.RawMessage(nil), snapshot...)
	}
	e.Ingredients, err = decodeIngredients(ingredients)
	return e, err
}

func (s *Store) queryEntries(ctx context.Context, op string, p storage.Projection, userID, query string, args ...any) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows, p, userID)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (s *Store) ListEntries(ctx context.Context, userID string, p storage.Projection) ([]models.Entry, error) {
	cols := fullColumns
	if p == storage.Lite {
		cols = liteColumns
	}
	query := `SELECT ` + cols + ` FROM food_entries WHERE user_id = $1 ORDER BY logged_at_epoch DESC LIMIT $2`
	return s.queryEntries(ctx, "remote.list_entries."+p.String(), p, userID, query, userID, s.limit)
}

func (s *Store) ListEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error) {
	query := `SELECT ` + liteColumns + ` FROM food_entries WHERE user_id = $1 AND date = $2 ORDER BY logged_at_epoch DESC LIMIT $3`
	return s.queryEntries(ctx, "remote.list_entries_for_date", storage.Lite, userID, query, userID, date, s.limit)
}

func (s *Store) ExportEntriesForDate(ctx context.Context, userID, date string) ([]models.Entry, error) {
	query := `SELECT ` + liteColumns + ` FROM food_entries WHERE user_id = $1 AND date = $2 ORDER BY logged_at_epoch DESC`
	return s.queryEntries(ctx, "remote.export_entries_for_date", storage.Lite, userID, query, userID, date)
}

// ListAggregates is not capped: archival must see every live row.
func (s *Store) ListAggregates(ctx context.Context, userID string) ([]models.EntryAggregate, error) {
	const op = "remote.list_aggregates"
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+aggColumns+` FROM food_entries WHERE user_id = $1 ORDER BY date`), userID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]models.EntryAggregate, 0)
	for rows.Next() {
		var a models.EntryAggregate
		if err := rows.Scan(&a.ID, &a.Date, &a.Calories, &a.Protein, &a.Carbs, &a.Fat); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (s *Store) GetImage(ctx context.Context, userID, id string) (*string, error) {
	var image sql.NullString
	err := s.db.QueryRowContext(ctx, s.q(`SELECT image FROM food_entries WHERE id = $1 AND user_id = $2`), id, userID).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("remote.get_image", err)
	}
	if !image.Valid {
		return nil, nil
	}
	img := image.String
	return &img, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.q(query), args...)
	return classify(op, err)
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	return s.exec(ctx, "remote.delete_entry", `DELETE FROM food_entries WHERE id = $1 AND user_id = $2`, id, userID)
}

func (s *Store) DeleteEntriesForDate(ctx context.Context, userID, date string) error {
	return s.exec(ctx, "remote.delete_entries_for_date", `DELETE FROM food_entries WHERE user_id = $1 AND date = $2`, userID, date)
}
