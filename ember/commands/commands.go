package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember/utils"
)

// Commands is the full slash command set synced to Discord.
var Commands = []discord.ApplicationCommandCreate{
	Streak,
	Achievements,
	Achievement,
	Award,
	Unaward,
	CustomAchievement,
	RoleRewards,
	StreakLeaderboard,
	Gallery,
	Version,
}

// requireManageGuild rejects the interaction unless the member can manage
// the guild. Admin commands always answer explicitly, including refusals.
func requireManageGuild(e *handler.CommandEvent) bool {
	member := e.Member()
	if member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
		_ = utils.EH.CreateErrorEmbed(e, "You need the **Manage Server** permission to use this command.")
		return false
	}
	return true
}

// guildID returns the guild the interaction came from, empty outside guilds.
func guildID(e *handler.CommandEvent) string {
	if e.GuildID() == nil {
		return ""
	}
	return e.GuildID().String()
}
