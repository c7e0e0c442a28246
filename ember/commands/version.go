package commands

import (
	"fmt"
	"runtime"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/utils"
)

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "📦 Show bot version information",
}

func VersionHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "Ember",
				Description: fmt.Sprintf("Version: `%s`\nCommit: `%s`\nGo: `%s`",
					b.Version, b.Commit, runtime.Version()),
				Color: utils.EmberColor,
			}},
		})
	}
}
