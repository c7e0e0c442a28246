package models

import (
	"time"

	"github.com/uptrace/bun"
)

// StreakState is the single row of streak bookkeeping per (user, guild).
// LongestStreak >= CurrentStreak holds at all times; TotalActiveDays never
// decreases. Only the streak tracker mutates it.
type StreakState struct {
	bun.BaseModel `bun:"table:streak_states,alias:ss"`

	ID               int64      `bun:"id,pk,autoincrement"`
	UserID           string     `bun:"user_id,notnull"`
	GuildID          string     `bun:"guild_id,notnull"`
	CurrentStreak    int        `bun:"current_streak,notnull,default:0"`
	LongestStreak    int        `bun:"longest_streak,notnull,default:0"`
	LastActivityDate *time.Time `bun:"last_activity_date,type:date"`
	TotalActiveDays  int        `bun:"total_active_days,notnull,default:0"`
	FreezesAvailable int        `bun:"freezes_available,notnull,default:1"`
	LastFreezeReset  time.Time  `bun:"last_freeze_reset,notnull,default:current_timestamp"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull"`
}
