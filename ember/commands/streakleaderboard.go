package commands

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/utils"
)

var StreakLeaderboard = discord.SlashCommandCreate{
	Name:        "streakleaderboard",
	Description: "🏅 Show the server's longest active streaks",
}

func StreakLeaderboardHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Leaderboards only exist inside a server.")
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		states, err := b.Tracker.TopStreaks(ctx, gid, b.Cfg.Activity.LeaderboardSize)
		if err != nil {
			_, updErr := e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: utils.Ptr("❌ Failed to fetch the leaderboard. Please try again later."),
			})
			return updErr
		}
		if len(states) == 0 {
			_, updErr := e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: utils.Ptr("Nobody has a streak yet. Go say something!"),
			})
			return updErr
		}

		names := make(map[string]string, len(states))
		for _, state := range states {
			if id, err := snowflake.Parse(state.UserID); err == nil {
				if member, err := e.Client().Rest().GetMember(*e.GuildID(), id); err == nil {
					names[state.UserID] = member.EffectiveName()
				}
			}
		}

		guildName := "Server"
		if guild, ok := e.Client().Caches().Guild(*e.GuildID()); ok {
			guildName = guild.Name
		}

		// Try the rendered image first, fall back to a plain embed.
		if b.LeaderboardImage != nil {
			if image, err := b.LeaderboardImage.GenerateStreakLeaderboard(ctx, guildName, states, names); err == nil {
				_, updErr := e.UpdateInteractionResponse(discord.MessageUpdate{
					Files: []*discord.File{
						{Name: "leaderboard.png", Reader: bytes.NewReader(image)},
					},
				})
				return updErr
			}
		}

		var sb strings.Builder
		medals := []string{"🥇", "🥈", "🥉"}
		for i, state := range states {
			rank := fmt.Sprintf("%d.", i+1)
			if i < len(medals) {
				rank = medals[i]
			}
			name := names[state.UserID]
			if name == "" {
				name = state.UserID
			}
			sb.WriteString(fmt.Sprintf("%s **%s** — %d days (best %d, total %d)\n",
				rank, name, state.CurrentStreak, state.LongestStreak, state.TotalActiveDays))
		}

		now := time.Now()
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds: &[]discord.Embed{{
				Title:       fmt.Sprintf("🏅 %s Streak Leaderboard", guildName),
				Description: sb.String(),
				Color:       utils.EmberColor,
				Timestamp:   &now,
			}},
		})
		return err
	}
}
