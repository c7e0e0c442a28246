package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role color policy constants
const (
	ColorPolicyRarity = "rarity"
	ColorPolicyBrand  = "brand"
)

// DefaultBrandColor is used when a guild picks the fixed brand color policy.
const DefaultBrandColor = 0xe67e22

// RoleRewardConfig drives the role reconciler per guild. Defaults apply when
// a guild has no row.
type RoleRewardConfig struct {
	bun.BaseModel `bun:"table:role_reward_configs,alias:rrc"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GuildID     string    `bun:"guild_id,notnull,unique"`
	Enabled     bool      `bun:"enabled,notnull,default:true"`
	RolePrefix  string    `bun:"role_prefix,notnull,default:''"`
	ColorPolicy string    `bun:"color_policy,notnull,default:'rarity'"`
	AutoCleanup bool      `bun:"auto_cleanup,notnull,default:true"`
	DMOnEarn    bool      `bun:"dm_on_earn,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// DefaultRoleRewardConfig returns the settings used for guilds without a row.
func DefaultRoleRewardConfig(guildID string) *RoleRewardConfig {
	return &RoleRewardConfig{
		GuildID:     guildID,
		Enabled:     true,
		RolePrefix:  "🔥 ",
		ColorPolicy: ColorPolicyRarity,
		AutoCleanup: true,
		DMOnEarn:    true,
	}
}

// AchievementRole links a platform role the reconciler created to the
// achievement it rewards. Orphan cleanup walks these links.
type AchievementRole struct {
	bun.BaseModel `bun:"table:achievement_roles,alias:ar"`

	ID            int64     `bun:"id,pk,autoincrement"`
	GuildID       string    `bun:"guild_id,notnull"`
	AchievementID string    `bun:"achievement_id,notnull"`
	RoleID        string    `bun:"role_id,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
