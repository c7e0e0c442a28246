package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

type RoleRewardRepository interface {
	// GetConfig returns the guild's reward settings, falling back to
	// defaults when the guild has never configured anything.
	GetConfig(ctx context.Context, guildID string) (*models.RoleRewardConfig, error)
	UpsertConfig(ctx context.Context, cfg *models.RoleRewardConfig) error

	GetRoleLink(ctx context.Context, guildID, achievementID string) (*models.AchievementRole, error)
	SaveRoleLink(ctx context.Context, link *models.AchievementRole) error
	DeleteRoleLink(ctx context.Context, guildID, achievementID string) error
	ListRoleLinks(ctx context.Context, guildID string) ([]*models.AchievementRole, error)
}

type roleRewardRepository struct {
	db *bun.DB
}

func NewRoleRewardRepository(db *bun.DB) RoleRewardRepository {
	return &roleRewardRepository{db: db}
}

func (r *roleRewardRepository) GetConfig(ctx context.Context, guildID string) (*models.RoleRewardConfig, error) {
	cfg := new(models.RoleRewardConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultRoleRewardConfig(guildID), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (r *roleRewardRepository) UpsertConfig(ctx context.Context, cfg *models.RoleRewardConfig) error {
	cfg.UpdatedAt = time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = cfg.UpdatedAt
	}
	_, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("enabled = EXCLUDED.enabled").
		Set("role_prefix = EXCLUDED.role_prefix").
		Set("color_policy = EXCLUDED.color_policy").
		Set("auto_cleanup = EXCLUDED.auto_cleanup").
		Set("dm_on_earn = EXCLUDED.dm_on_earn").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *roleRewardRepository) GetRoleLink(ctx context.Context, guildID, achievementID string) (*models.AchievementRole, error) {
	link := new(models.AchievementRole)
	err := r.db.NewSelect().
		Model(link).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return link, nil
}

func (r *roleRewardRepository) SaveRoleLink(ctx context.Context, link *models.AchievementRole) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(link).
		On("CONFLICT (guild_id, achievement_id) DO UPDATE").
		Set("role_id = EXCLUDED.role_id").
		Exec(ctx)
	return err
}

func (r *roleRewardRepository) DeleteRoleLink(ctx context.Context, guildID, achievementID string) error {
	_, err := r.db.NewDelete().
		Model((*models.AchievementRole)(nil)).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Exec(ctx)
	return err
}

func (r *roleRewardRepository) ListRoleLinks(ctx context.Context, guildID string) ([]*models.AchievementRole, error) {
	var links []*models.AchievementRole
	err := r.db.NewSelect().
		Model(&links).
		Where("guild_id = ?", guildID).
		Order("achievement_id ASC").
		Scan(ctx)
	return links, err
}
