package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Achievement category constants
const (
	CategoryStreak  = "streak"
	CategoryTotal   = "total"
	CategoryMessage = "message"
	CategoryVoice   = "voice"
	CategoryCommand = "command"
	CategorySpecial = "special"
	CategorySocial  = "social"
	CategoryCombo   = "combo"
	CategoryMeta    = "meta"
	CategoryCustom  = "custom"
)

// Rarity is the ordinal display classification. It never gates awarding.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

var rarityOrder = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
	RarityMythic:    5,
}

// Ord returns the rarity's ordinal, -1 for unknown values.
func (r Rarity) Ord() int {
	if o, ok := rarityOrder[r]; ok {
		return o
	}
	return -1
}

// Color returns the embed/role color used when a guild's reward color
// policy is rarity-based.
func (r Rarity) Color() int {
	switch r {
	case RarityCommon:
		return 0x95a5a6
	case RarityUncommon:
		return 0x2ecc71
	case RarityRare:
		return 0x3498db
	case RarityEpic:
		return 0x9b59b6
	case RarityLegendary:
		return 0xf1c40f
	case RarityMythic:
		return 0xe74c3c
	default:
		return 0x95a5a6
	}
}

// AchievementDefinition is one rule in the catalog. Core definitions are
// seeded once and have an empty GuildID; guild-scoped custom achievements
// share the schema and are editable by guild admins.
type AchievementDefinition struct {
	bun.BaseModel `bun:"table:achievement_definitions,alias:ad"`

	ID            int64        `bun:"id,pk,autoincrement"`
	AchievementID string       `bun:"achievement_id,notnull"`
	GuildID       string       `bun:"guild_id,notnull,default:''"`
	Title         string       `bun:"title,notnull"`
	Description   string       `bun:"description,notnull"`
	Emoji         string       `bun:"emoji,notnull,default:''"`
	Category      string       `bun:"category,notnull"`
	Rarity        Rarity       `bun:"rarity,notnull"`
	CheckType     CheckType    `bun:"check_type,notnull"`
	Criteria      CriteriaSpec `bun:"criteria,type:jsonb"`
	GrantRole     bool         `bun:"grant_role,notnull,default:false"`
	Points        int          `bun:"points,notnull"`
	SeasonStart   *time.Time   `bun:"season_start"`
	SeasonEnd     *time.Time   `bun:"season_end"`
	CreatedAt     time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time    `bun:"updated_at,notnull"`
}

// IsCustom reports whether the definition is guild-owned.
func (d *AchievementDefinition) IsCustom() bool {
	return d.GuildID != ""
}

// Seasonal reports whether the definition carries an active-date window.
func (d *AchievementDefinition) Seasonal() bool {
	return d.SeasonStart != nil || d.SeasonEnd != nil
}

// InSeason reports whether now falls inside the active window. Definitions
// without a window are always in season.
func (d *AchievementDefinition) InSeason(now time.Time) bool {
	if d.SeasonStart != nil && now.Before(*d.SeasonStart) {
		return false
	}
	if d.SeasonEnd != nil && now.After(*d.SeasonEnd) {
		return false
	}
	return true
}

// AwardedAchievement records one earned achievement. The
// (user_id, guild_id, achievement_id) unique index is what makes awarding
// at-most-once under concurrent evaluation.
type AwardedAchievement struct {
	bun.BaseModel `bun:"table:awarded_achievements,alias:aa"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        string    `bun:"user_id,notnull"`
	GuildID       string    `bun:"guild_id,notnull"`
	AchievementID string    `bun:"achievement_id,notnull"`
	EarnedAt      time.Time `bun:"earned_at,notnull,default:current_timestamp"`
	AwardedBy     *string   `bun:"awarded_by"`
}
