package remote

import (
	"context"

	"github.com/dmitrijs2005/nutrilog/internal/dbx"
	"github.com/dmitrijs2005/nutrilog/internal/models"
)

const upsertSummary = `
	INSERT INTO daily_summaries (user_id, date, calories, protein, carbs, fat, archived)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (user_id, date) DO UPDATE SET
		calories = excluded.calories,
		protein = excluded.protein,
		carbs = excluded.carbs,
		fat = excluded.fat,
		archived = excluded.archived`

func (s *Store) UpsertSummaries(ctx context.Context, summaries []models.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, sum := range summaries {
			if _, err := tx.ExecContext(ctx, s.q(upsertSummary),
				sum.UserID, sum.Date, sum.Calories, sum.Protein, sum.Carbs, sum.Fat, sum.Archived); err != nil {
				return err
			}
		}
		return nil
	})
	return classify("remote.upsert_summaries", err)
}

func (s *Store) ListSummaries(ctx context.Context, userID string) ([]models.DailySummary, error) {
	const op = "remote.list_summaries"
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT user_id, date, calories, protein, carbs, fat, archived
		FROM daily_summaries WHERE user_id = $1 ORDER BY date DESC`), userID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]models.DailySummary, 0)
	for rows.Next() {
		var sum models.DailySummary
		if err := rows.Scan(&sum.UserID, &sum.Date, &sum.Calories, &sum.Protein, &sum.Carbs, &sum.Fat, &sum.Archived); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
