package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

type StreakRepository interface {
	Get(ctx context.Context, userID, guildID string) (*models.StreakState, error)
	// Mutate runs fn against the pair's state inside a single transaction,
	// creating the row first when absent (with initialFreezes available).
	// The row is locked for the duration, so two racing activity events for
	// the same user serialize instead of losing an update. fn reports
	// whether the state changed; changed state is persisted before commit.
	Mutate(ctx context.Context, userID, guildID string, initialFreezes int, fn func(*models.StreakState) (bool, error)) (*models.StreakState, error)
	TopStreaks(ctx context.Context, guildID string, limit int) ([]*models.StreakState, error)
	// ResetMonthlyFreezes restores the freeze allowance for every user whose
	// last reset predates monthStart. Returns the number of rows touched.
	ResetMonthlyFreezes(ctx context.Context, monthStart time.Time, allowance int) (int64, error)
}

type streakRepository struct {
	db *bun.DB
}

func NewStreakRepository(db *bun.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Get(ctx context.Context, userID, guildID string) (*models.StreakState, error) {
	state := new(models.StreakState)
	err := r.db.NewSelect().
		Model(state).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return state, nil
}

func (r *streakRepository) Mutate(ctx context.Context, userID, guildID string, initialFreezes int, fn func(*models.StreakState) (bool, error)) (*models.StreakState, error) {
	var result *models.StreakState

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		state := new(models.StreakState)
		err := tx.NewSelect().
			Model(state).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			For("UPDATE").
			Scan(ctx)

		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now()
			fresh := &models.StreakState{
				UserID:           userID,
				GuildID:          guildID,
				FreezesAvailable: initialFreezes,
				LastFreezeReset:  now,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			// A racing creator may win; DO NOTHING and re-select the locked row.
			if _, err := tx.NewInsert().
				Model(fresh).
				On("CONFLICT (user_id, guild_id) DO NOTHING").
				Exec(ctx); err != nil {
				return err
			}
			state = new(models.StreakState)
			if err := tx.NewSelect().
				Model(state).
				Where("user_id = ?", userID).
				Where("guild_id = ?", guildID).
				For("UPDATE").
				Scan(ctx); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		changed, err := fn(state)
		if err != nil {
			return err
		}
		if changed {
			state.UpdatedAt = time.Now()
			if _, err := tx.NewUpdate().Model(state).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
		result = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *streakRepository) TopStreaks(ctx context.Context, guildID string, limit int) ([]*models.StreakState, error) {
	var states []*models.StreakState
	err := r.db.NewSelect().
		Model(&states).
		Where("guild_id = ?", guildID).
		Where("current_streak > 0").
		Order("current_streak DESC", "longest_streak DESC", "user_id ASC").
		Limit(limit).
		Scan(ctx)
	return states, err
}

func (r *streakRepository) ResetMonthlyFreezes(ctx context.Context, monthStart time.Time, allowance int) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.StreakState)(nil)).
		Set("freezes_available = ?", allowance).
		Set("last_freeze_reset = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("last_freeze_reset < ?", monthStart).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
