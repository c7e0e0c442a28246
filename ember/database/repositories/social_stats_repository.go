package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

type SocialStatsRepository interface {
	// Increment adds the deltas to the pair's lifetime counters, creating
	// the row on first use.
	Increment(ctx context.Context, userID, guildID string, given, received int64) error
	Get(ctx context.Context, userID, guildID string) (*models.SocialStats, error)
}

type socialStatsRepository struct {
	db *bun.DB
}

func NewSocialStatsRepository(db *bun.DB) SocialStatsRepository {
	return &socialStatsRepository{db: db}
}

func (r *socialStatsRepository) Increment(ctx context.Context, userID, guildID string, given, received int64) error {
	now := time.Now()
	stats := &models.SocialStats{
		UserID:            userID,
		GuildID:           guildID,
		ReactionsGiven:    given,
		ReactionsReceived: received,
		UpdatedAt:         now,
	}

	_, err := r.db.NewInsert().
		Model(stats).
		On("CONFLICT (user_id, guild_id) DO UPDATE").
		Set("reactions_given = sst.reactions_given + EXCLUDED.reactions_given").
		Set("reactions_received = sst.reactions_received + EXCLUDED.reactions_received").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *socialStatsRepository) Get(ctx context.Context, userID, guildID string) (*models.SocialStats, error) {
	stats := new(models.SocialStats)
	err := r.db.NewSelect().
		Model(stats).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.SocialStats{UserID: userID, GuildID: guildID}, nil
		}
		return nil, err
	}
	return stats, nil
}
