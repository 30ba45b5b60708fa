package repository

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nutrilog/internal/cache"
	"github.com/dmitrijs2005/nutrilog/internal/identity"
	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/dmitrijs2005/nutrilog/internal/storage"
)

// SettingsRepository serves the daily goal, onboarding flag and profile of
// the current user.
type SettingsRepository struct {
	base
}

func NewSettingsRepository(backend storage.Backend, c *cache.Cache, users identity.Provider, log logging.Logger, opts Options) *SettingsRepository {
	return &SettingsRepository{base{backend: backend, cache: c, users: users, log: log, opts: opts.withDefaults()}}
}

func (r *SettingsRepository) settings(ctx context.Context) (*models.Settings, error) {
	u, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	st, err := cache.GetOrCompute(ctx, r.cache, SettingsKey(u.ID), r.opts.SettingsTTL,
		func(ctx context.Context) (*models.Settings, error) {
			return r.backend.GetSettings(ctx, u.ID)
		})
	if err != nil {
		if r.degraded(ctx, "settings", err) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// DailyGoal returns the stored goal, or models.DefaultDailyGoal.
func (r *SettingsRepository) DailyGoal(ctx context.Context) (int, error) {
	st, err := r.settings(ctx)
	if err != nil {
		return 0, err
	}
	if st == nil || st.DailyGoal <= 0 {
		return models.DefaultDailyGoal, nil
	}
	return st.DailyGoal, nil
}

func (r *SettingsRepository) SetDailyGoal(ctx context.Context, goal int) error {
	if goal <= 0 {
		return fmt.Errorf("daily goal must be positive, got %d", goal)
	}
	u, err := r.user(ctx)
	if err != nil {
		return err
	}
	if err := r.backend.SetDailyGoal(ctx, u.ID, goal); err != nil {
		return err
	}
	r.cache.Invalidate(SettingsKey(u.ID))
	return nil
}

func (r *SettingsRepository) Onboarded(ctx context.Context) (bool, error) {
	st, err := r.settings(ctx)
	if err != nil || st == nil {
		return false, err
	}
	return st.Onboarded, nil
}

func (r *SettingsRepository) SetOnboarded(ctx context.Context, onboarded bool) error {
	u, err := r.user(ctx)
	if err != nil {
		return err
	}
	if err := r.backend.SetOnboarded(ctx, u.ID, onboarded); err != nil {
		return err
	}
	r.cache.Invalidate(SettingsKey(u.ID))
	return nil
}

// Profile returns the stored profile, or nil.
func (r *SettingsRepository) Profile(ctx context.Context) (*models.Profile, error) {
	u, err := r.user(ctx)
	if err != nil {
		return nil, err
	}
	p, err := cache.GetOrCompute(ctx, r.cache, ProfileKey(u.ID), r.opts.SettingsTTL,
		func(ctx context.Context) (*models.Profile, error) {
			return r.backend.GetProfile(ctx, u.ID)
		})
	if err != nil {
		if r.degraded(ctx, "profile", err) {
			return nil, nil
		}
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// SaveProfile stores p for the current user; p.UserID is overwritten.
func (r *SettingsRepository) SaveProfile(ctx context.Context, p *models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	u, err := r.user(ctx)
	if err != nil {
		return err
	}
	p.UserID = u.ID
	if err := r.backend.SaveProfile(ctx, p); err != nil {
		return err
	}
	r.cache.Invalidate(ProfileKey(u.ID))
	return nil
}
