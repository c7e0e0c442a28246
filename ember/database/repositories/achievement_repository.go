package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

type AchievementRepository interface {
	// SeedDefinitions upserts the core (guild-less) catalog. Display fields
	// refresh in place; existing awards are untouched, so re-seeding is
	// safe to run on every startup.
	SeedDefinitions(ctx context.Context, defs []*models.AchievementDefinition) error
	GetCoreDefinitions(ctx context.Context) ([]*models.AchievementDefinition, error)
	GetCustomDefinitions(ctx context.Context, guildID string) ([]*models.AchievementDefinition, error)
	CreateCustomDefinition(ctx context.Context, def *models.AchievementDefinition) error
	UpdateCustomDefinition(ctx context.Context, def *models.AchievementDefinition) error
	DeleteCustomDefinition(ctx context.Context, guildID, achievementID string) error

	AwardedIDs(ctx context.Context, userID, guildID string) (map[string]struct{}, error)
	AwardedList(ctx context.Context, userID, guildID string) ([]*models.AwardedAchievement, error)
	// InsertAward inserts the award row guarded by the unique triple index.
	// A duplicate attempt reports inserted == false with no error.
	InsertAward(ctx context.Context, award *models.AwardedAchievement) (inserted bool, err error)
	DeleteAward(ctx context.Context, userID, guildID, achievementID string) error
	HasAward(ctx context.Context, userID, guildID, achievementID string) (bool, error)
	CountAwards(ctx context.Context, guildID, achievementID string) (int, error)
}

type achievementRepository struct {
	db *bun.DB
}

func NewAchievementRepository(db *bun.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) SeedDefinitions(ctx context.Context, defs []*models.AchievementDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	now := time.Now()
	for _, def := range defs {
		def.GuildID = ""
		def.UpdatedAt = now
	}

	_, err := r.db.NewInsert().
		Model(&defs).
		On("CONFLICT (guild_id, achievement_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("emoji = EXCLUDED.emoji").
		Set("category = EXCLUDED.category").
		Set("rarity = EXCLUDED.rarity").
		Set("check_type = EXCLUDED.check_type").
		Set("criteria = EXCLUDED.criteria").
		Set("grant_role = EXCLUDED.grant_role").
		Set("points = EXCLUDED.points").
		Set("season_start = EXCLUDED.season_start").
		Set("season_end = EXCLUDED.season_end").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *achievementRepository) GetCoreDefinitions(ctx context.Context) ([]*models.AchievementDefinition, error) {
	var defs []*models.AchievementDefinition
	err := r.db.NewSelect().
		Model(&defs).
		Where("guild_id = ''").
		Order("category ASC", "achievement_id ASC").
		Scan(ctx)
	return defs, err
}

func (r *achievementRepository) GetCustomDefinitions(ctx context.Context, guildID string) ([]*models.AchievementDefinition, error) {
	var defs []*models.AchievementDefinition
	q := r.db.NewSelect().
		Model(&defs).
		Where("guild_id != ''").
		Order("guild_id ASC", "achievement_id ASC")
	if guildID != "" {
		q = q.Where("guild_id = ?", guildID)
	}
	err := q.Scan(ctx)
	return defs, err
}

func (r *achievementRepository) CreateCustomDefinition(ctx context.Context, def *models.AchievementDefinition) error {
	if def.GuildID == "" {
		return fmt.Errorf("custom achievement requires a guild id")
	}
	now := time.Now()
	def.CreatedAt = now
	def.UpdatedAt = now

	_, err := r.db.NewInsert().Model(def).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("achievement %q: %w", def.AchievementID, ErrAlreadyExists)
	}
	return err
}

func (r *achievementRepository) UpdateCustomDefinition(ctx context.Context, def *models.AchievementDefinition) error {
	def.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(def).
		Column("title", "description", "emoji", "rarity", "check_type", "criteria", "grant_role", "points", "season_start", "season_end", "updated_at").
		Where("guild_id = ?", def.GuildID).
		Where("achievement_id = ?", def.AchievementID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("achievement %q: %w", def.AchievementID, ErrNotFound)
	}
	return nil
}

func (r *achievementRepository) DeleteCustomDefinition(ctx context.Context, guildID, achievementID string) error {
	res, err := r.db.NewDelete().
		Model((*models.AchievementDefinition)(nil)).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("achievement %q: %w", achievementID, ErrNotFound)
	}
	return nil
}

func (r *achievementRepository) AwardedIDs(ctx context.Context, userID, guildID string) (map[string]struct{}, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.AwardedAchievement)(nil)).
		Column("achievement_id").
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *achievementRepository) AwardedList(ctx context.Context, userID, guildID string) ([]*models.AwardedAchievement, error) {
	var awards []*models.AwardedAchievement
	err := r.db.NewSelect().
		Model(&awards).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Order("earned_at ASC").
		Scan(ctx)
	return awards, err
}

func (r *achievementRepository) InsertAward(ctx context.Context, award *models.AwardedAchievement) (bool, error) {
	if award.EarnedAt.IsZero() {
		award.EarnedAt = time.Now()
	}
	res, err := r.db.NewInsert().
		Model(award).
		On("CONFLICT (user_id, guild_id, achievement_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *achievementRepository) DeleteAward(ctx context.Context, userID, guildID, achievementID string) error {
	res, err := r.db.NewDelete().
		Model((*models.AwardedAchievement)(nil)).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("award %q: %w", achievementID, ErrNotFound)
	}
	return nil
}

func (r *achievementRepository) HasAward(ctx context.Context, userID, guildID, achievementID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.AwardedAchievement)(nil)).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Exists(ctx)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return exists, err
}

func (r *achievementRepository) CountAwards(ctx context.Context, guildID, achievementID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.AwardedAchievement)(nil)).
		Where("guild_id = ?", guildID).
		Where("achievement_id = ?", achievementID).
		Count(ctx)
}

// isUniqueViolation matches Postgres error 23505 from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
