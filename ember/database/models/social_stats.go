package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SocialStats holds the lifetime social counters per (user, guild) that feed
// the social achievement category.
type SocialStats struct {
	bun.BaseModel `bun:"table:social_stats,alias:sst"`

	ID                int64     `bun:"id,pk,autoincrement"`
	UserID            string    `bun:"user_id,notnull"`
	GuildID           string    `bun:"guild_id,notnull"`
	ReactionsGiven    int64     `bun:"reactions_given,notnull,default:0"`
	ReactionsReceived int64     `bun:"reactions_received,notnull,default:0"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}
