package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ActivityKind is the unit an activity increment is counted against.
type ActivityKind string

const (
	ActivityKindMessage      ActivityKind = "message"
	ActivityKindVoiceMinutes ActivityKind = "voice_minutes"
	ActivityKindCommand      ActivityKind = "command"
)

// DailyActivity holds one user's counters for one UTC calendar day in one
// guild. Counters only ever grow within a day.
type DailyActivity struct {
	bun.BaseModel `bun:"table:daily_activities,alias:da"`

	ID           int64     `bun:"id,pk,autoincrement"`
	UserID       string    `bun:"user_id,notnull"`
	GuildID      string    `bun:"guild_id,notnull"`
	ActivityDate time.Time `bun:"activity_date,notnull,type:date"`
	MessageCount int64     `bun:"message_count,notnull,default:0"`
	VoiceMinutes int64     `bun:"voice_minutes,notnull,default:0"`
	CommandsRun  int64     `bun:"commands_run,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// UTCDay truncates t to its UTC calendar day. Every guild and user shares
// this day boundary so streak state cannot split across timezones.
func UTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (both truncated to UTC days).
func DaysBetween(a, b time.Time) int {
	return int(UTCDay(b).Sub(UTCDay(a)) / (24 * time.Hour))
}
