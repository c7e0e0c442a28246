package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/utils"
)

var Award = discord.SlashCommandCreate{
	Name:        "award",
	Description: "🎖️ Manually grant an achievement to a member (admin)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to award",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:         "id",
			Description:  "Achievement to grant",
			Required:     true,
			Autocomplete: true,
		},
	},
}

var Unaward = discord.SlashCommandCreate{
	Name:        "unaward",
	Description: "🗑️ Revoke an achievement from a member (admin)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Member to revoke from",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:         "id",
			Description:  "Achievement to revoke",
			Required:     true,
			Autocomplete: true,
		},
	},
}

func AwardHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		id := strings.TrimSpace(data.String("id"))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		def, err := b.Evaluator.AwardManually(ctx, target.ID.String(), gid, id, e.User().ID.String())
		switch {
		case errors.Is(err, achievements.ErrUnknownAchievement):
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No achievement with id `%s`.", id))
		case errors.Is(err, achievements.ErrOutOfSeason):
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("`%s` is outside its seasonal window and cannot be awarded right now.", id))
		case errors.Is(err, achievements.ErrAlreadyAwarded):
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("%s already has `%s`.", target.EffectiveName(), id))
		case err != nil:
			return utils.EH.CreateErrorEmbed(e, "Failed to grant the achievement. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Granted %s **%s** to %s.", def.Emoji, def.Title, target.Mention()))
	}
}

func UnawardHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		id := strings.TrimSpace(data.String("id"))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.Evaluator.RemoveAward(ctx, target.ID.String(), gid, id); err != nil {
			if errors.Is(err, achievements.ErrUnknownAchievement) {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("%s does not hold `%s`.", target.EffectiveName(), id))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to revoke the achievement. Please try again later.")
		}

		if err := b.Reconciler.RevokeForAchievement(ctx, target.ID.String(), gid, id); err != nil {
			// The award is already gone; the role drifts until the next cleanup.
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Revoked `%s` from %s, but the reward role could not be removed.", id, target.Mention()))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Revoked `%s` from %s.", id, target.Mention()))
	}
}
