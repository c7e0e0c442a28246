package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/uptrace/bun"
)

type MediaRepository interface {
	Insert(ctx context.Context, item *models.MediaItem) error
	ListByUser(ctx context.Context, userID, guildID string, limit int) ([]*models.MediaItem, error)
	GetByID(ctx context.Context, id int64) (*models.MediaItem, error)
	Delete(ctx context.Context, id int64) error
}

type mediaRepository struct {
	db *bun.DB
}

func NewMediaRepository(db *bun.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Insert(ctx context.Context, item *models.MediaItem) error {
	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	return err
}

func (r *mediaRepository) ListByUser(ctx context.Context, userID, guildID string, limit int) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	err := r.db.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return items, err
}

func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*models.MediaItem, error) {
	item := new(models.MediaItem)
	err := r.db.NewSelect().
		Model(item).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.MediaItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
