package remote

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/nutrilog/internal/models"
)

func (s *Store) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var (
		goal      sql.NullInt64
		onboarded bool
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT daily_goal, onboarded FROM user_settings WHERE user_id = $1`), userID).
		Scan(&goal, &onboarded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("remote.get_settings", err)
	}
	return &models.Settings{UserID: userID, DailyGoal: int(goal.Int64), Onboarded: onboarded}, nil
}

// SetDailyGoal upserts the goal column only.
func (s *Store) SetDailyGoal(ctx context.Context, userID string, goal int) error {
	return s.exec(ctx, "remote.set_daily_goal", `
		INSERT INTO user_settings (user_id, daily_goal) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET daily_goal = excluded.daily_goal`, userID, goal)
}

// SetOnboarded upserts the onboarding flag only.
func (s *Store) SetOnboarded(ctx context.Context, userID string, onboarded bool) error {
	return s.exec(ctx, "remote.set_onboarded", `
		INSERT INTO user_settings (user_id, onboarded) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET onboarded = excluded.onboarded`, userID, onboarded)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p                             models.Profile
		height, weight, target        sql.NullFloat64
		age                           sql.NullInt64
		gender, activity, goal, equip string
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT user_id, display_name, height_cm, weight_kg, age, gender, activity_level, goal, equipment, target_weight
		FROM profiles WHERE user_id = $1`), userID).
		Scan(&p.UserID, &p.DisplayName, &height, &weight, &age, &gender, &activity, &goal, &equip, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("remote.get_profile", err)
	}

	p.HeightCm = floatPtr(height)
	p.WeightKg = floatPtr(weight)
	p.TargetWeight = floatPtr(target)
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	p.Gender = models.Gender(gender)
	p.ActivityLevel = models.ActivityLevel(activity)
	p.Goal = models.Goal(goal)
	p.Equipment = models.EquipmentAccess(equip)
	return &p, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	return s.exec(ctx, "remote.save_profile", `
		INSERT INTO profiles (user_id, display_name, height_cm, weight_kg, age, gender, activity_level, goal, equipment, target_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			age = excluded.age,
			gender = excluded.gender,
			activity_level = excluded.activity_level,
			goal = excluded.goal,
			equipment = excluded.equipment,
			target_weight = excluded.target_weight`,
		p.UserID, p.DisplayName, p.HeightCm, p.WeightKg, p.Age,
		string(p.Gender), string(p.ActivityLevel), string(p.Goal), string(p.Equipment), p.TargetWeight)
}
