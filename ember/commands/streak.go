package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/utils"
)

var Streak = discord.SlashCommandCreate{
	Name:        "streak",
	Description: "🔥 View your activity streak and earned achievements",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "View another member's streak instead",
			Required:    false,
		},
	},
}

func StreakHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Streaks only exist inside a server.")
		}

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		streak, err := b.Tracker.GetUserStreak(ctx, target.ID.String(), gid)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch streak data. Please try again later.")
		}

		state := streak.State
		freezeWord := "freezes"
		if state.FreezesAvailable == 1 {
			freezeWord = "freeze"
		}

		description := fmt.Sprintf(
			"**Current streak:** %d days\n**Longest streak:** %d days\n**Total active days:** %d\n**%d %s** left this month",
			state.CurrentStreak, state.LongestStreak, state.TotalActiveDays, state.FreezesAvailable, freezeWord,
		)

		fields := []discord.EmbedField{}
		if len(streak.Achievements) > 0 {
			var sb strings.Builder
			shown := 0
			for _, earned := range streak.Achievements {
				if earned.Definition == nil {
					continue
				}
				sb.WriteString(fmt.Sprintf("%s **%s** · %s\n",
					earned.Definition.Emoji, earned.Definition.Title, earned.Definition.Rarity))
				shown++
				if shown >= 10 {
					break
				}
			}
			if len(streak.Achievements) > shown {
				sb.WriteString(fmt.Sprintf("…and %d more. Use `/achievements` to browse.\n", len(streak.Achievements)-shown))
			}
			fields = append(fields, discord.EmbedField{
				Name:  fmt.Sprintf("Achievements (%d)", len(streak.Achievements)),
				Value: sb.String(),
			})
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🔥 %s's Streak", target.EffectiveName()),
				Description: description,
				Fields:      fields,
				Color:       utils.EmberColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
