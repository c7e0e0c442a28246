package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

// ActivityTotals are a user's lifetime aggregates within a guild.
type ActivityTotals struct {
	Messages     int64
	VoiceMinutes int64
	Commands     int64
}

// UserGuild identifies one (user, guild) pair, used by sweep queries.
type UserGuild struct {
	UserID  string `bun:"user_id"`
	GuildID string `bun:"guild_id"`
}

type ActivityRepository interface {
	// RecordActivity upserts today's counter row and adds amount to the
	// counter for kind. Storage failures propagate to the caller; there is
	// no retry at this layer.
	RecordActivity(ctx context.Context, userID, guildID string, kind models.ActivityKind, amount int64) error
	GetDay(ctx context.Context, userID, guildID string, day time.Time) (*models.DailyActivity, error)
	GetRange(ctx context.Context, userID, guildID string, from, to time.Time) ([]*models.DailyActivity, error)
	GetTotals(ctx context.Context, userID, guildID string) (ActivityTotals, error)
	// ActiveSince lists pairs with any activity on or after the given day,
	// for the background re-evaluation sweep.
	ActiveSince(ctx context.Context, day time.Time) ([]UserGuild, error)
}

type activityRepository struct {
	db *bun.DB
}

func NewActivityRepository(db *bun.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) RecordActivity(ctx context.Context, userID, guildID string, kind models.ActivityKind, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("activity amount must be positive, got %d", amount)
	}

	now := time.Now()
	rec := &models.DailyActivity{
		UserID:       userID,
		GuildID:      guildID,
		ActivityDate: models.UTCDay(now),
		UpdatedAt:    now,
	}

	switch kind {
	case models.ActivityKindMessage:
		rec.MessageCount = amount
	case models.ActivityKindVoiceMinutes:
		rec.VoiceMinutes = amount
	case models.ActivityKindCommand:
		rec.CommandsRun = amount
	default:
		return fmt.Errorf("unknown activity kind %q", kind)
	}

	_, err := r.db.NewInsert().
		Model(rec).
		On("CONFLICT (user_id, guild_id, activity_date) DO UPDATE").
		Set("message_count = da.message_count + EXCLUDED.message_count").
		Set("voice_minutes = da.voice_minutes + EXCLUDED.voice_minutes").
		Set("commands_run = da.commands_run + EXCLUDED.commands_run").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *activityRepository) GetDay(ctx context.Context, userID, guildID string, day time.Time) (*models.DailyActivity, error) {
	rec := new(models.DailyActivity)
	err := r.db.NewSelect().
		Model(rec).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Where("activity_date = ?", models.UTCDay(day)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *activityRepository) GetRange(ctx context.Context, userID, guildID string, from, to time.Time) ([]*models.DailyActivity, error) {
	var recs []*models.DailyActivity
	err := r.db.NewSelect().
		Model(&recs).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Where("activity_date >= ?", models.UTCDay(from)).
		Where("activity_date <= ?", models.UTCDay(to)).
		Order("activity_date ASC").
		Scan(ctx)
	return recs, err
}

func (r *activityRepository) GetTotals(ctx context.Context, userID, guildID string) (ActivityTotals, error) {
	var totals ActivityTotals
	err := r.db.NewSelect().
		Model((*models.DailyActivity)(nil)).
		ColumnExpr("COALESCE(SUM(message_count), 0) AS messages").
		ColumnExpr("COALESCE(SUM(voice_minutes), 0) AS voice_minutes").
		ColumnExpr("COALESCE(SUM(commands_run), 0) AS commands").
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Scan(ctx, &totals.Messages, &totals.VoiceMinutes, &totals.Commands)
	return totals, err
}

func (r *activityRepository) ActiveSince(ctx context.Context, day time.Time) ([]UserGuild, error) {
	var pairs []UserGuild
	err := r.db.NewSelect().
		Model((*models.DailyActivity)(nil)).
		ColumnExpr("DISTINCT user_id, guild_id").
		Where("activity_date >= ?", models.UTCDay(day)).
		Scan(ctx, &pairs)
	return pairs, err
}
