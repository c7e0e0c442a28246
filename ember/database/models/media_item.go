package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MediaItem is one archived attachment in a user's gallery. The binary
// itself lives in object storage under ObjectKey.
type MediaItem struct {
	bun.BaseModel `bun:"table:media_items,alias:mi"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	GuildID     string    `bun:"guild_id,notnull"`
	ObjectKey   string    `bun:"object_key,notnull,unique"`
	FileName    string    `bun:"file_name,notnull"`
	ContentType string    `bun:"content_type,notnull"`
	SizeBytes   int64     `bun:"size_bytes,notnull,default:0"`
	MessageID   string    `bun:"message_id,notnull,default:''"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
