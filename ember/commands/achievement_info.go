package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/utils"
)

var Achievement = discord.SlashCommandCreate{
	Name:        "achievement",
	Description: "🔎 Inspect a single achievement",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "info",
			Description: "Show one achievement's rule, rarity and holders",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "id",
					Description:  "Achievement to inspect",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
	},
}

func AchievementInfoHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Achievements only exist inside a server.")
		}

		id := strings.TrimSpace(e.SlashCommandInteractionData().String("id"))
		def, ok := b.Catalog.ByID(gid, id)
		if !ok {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No achievement with id `%s`.", id))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		holders, err := b.AchievementRepository.CountAwards(ctx, gid, def.AchievementID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch achievement data. Please try again later.")
		}

		fields := []discord.EmbedField{
			{Name: "Rarity", Value: string(def.Rarity), Inline: utils.Ptr(true)},
			{Name: "Category", Value: def.Category, Inline: utils.Ptr(true)},
			{Name: "Points", Value: fmt.Sprintf("%d", def.Points), Inline: utils.Ptr(true)},
			{Name: "Holders here", Value: fmt.Sprintf("%d", holders), Inline: utils.Ptr(true)},
			{Name: "Rule", Value: describeCriteria(def), Inline: utils.Ptr(false)},
		}
		if def.GrantRole {
			fields = append(fields, discord.EmbedField{Name: "Reward", Value: "Grants a server role", Inline: utils.Ptr(true)})
		}
		if def.Seasonal() {
			fields = append(fields, discord.EmbedField{Name: "Season", Value: describeSeason(def), Inline: utils.Ptr(false)})
		}
		if def.IsCustom() {
			fields = append(fields, discord.EmbedField{Name: "Scope", Value: "Custom to this server", Inline: utils.Ptr(true)})
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("%s %s", def.Emoji, def.Title),
				Description: def.Description,
				Fields:      fields,
				Color:       def.Rarity.Color(),
				Footer:      &discord.EmbedFooter{Text: def.AchievementID},
				Timestamp:   &now,
			}},
		})
	}
}

// AchievementAutocompleteHandler fuzzy-matches the id option against the
// guild's awardable catalog.
func AchievementAutocompleteHandler(b *ember.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		gid := ""
		if e.GuildID() != nil {
			gid = e.GuildID().String()
		}

		focused := e.Data.Focused()
		query := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal autocomplete value", slog.Any("error", err))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			query = strings.TrimSpace(s)
		}

		choices := make([]discord.AutocompleteChoice, 0, 25)
		for _, def := range b.Catalog.Search(gid, query, 25) {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  fmt.Sprintf("%s %s (%s)", def.Emoji, def.Title, def.Rarity),
				Value: def.AchievementID,
			})
		}
		return e.AutocompleteResult(choices)
	}
}

func describeCriteria(def *models.AchievementDefinition) string {
	switch c := def.Criteria.Criteria.(type) {
	case models.ExactCriteria:
		return fmt.Sprintf("Reach **%d** %s", c.Value, statLabel(c.Stat))
	case models.ThresholdCriteria:
		return fmt.Sprintf("Accumulate **%d** %s", c.Value, statLabel(c.Stat))
	case models.ComboCriteria:
		parts := make([]string, 0, len(c.Parts))
		for _, part := range c.Parts {
			parts = append(parts, fmt.Sprintf("%d %s", part.Value, statLabel(part.Stat)))
		}
		return "All of: " + strings.Join(parts, ", ")
	case models.SpecialCriteria:
		return "Hidden condition"
	case models.MetaCriteria:
		return fmt.Sprintf("Earn **%d** other achievements", c.Count)
	default:
		return "Unknown"
	}
}

func describeSeason(def *models.AchievementDefinition) string {
	const layout = "Jan 2, 2006"
	switch {
	case def.SeasonStart != nil && def.SeasonEnd != nil:
		return fmt.Sprintf("%s – %s", def.SeasonStart.Format(layout), def.SeasonEnd.Format(layout))
	case def.SeasonStart != nil:
		return "From " + def.SeasonStart.Format(layout)
	case def.SeasonEnd != nil:
		return "Until " + def.SeasonEnd.Format(layout)
	default:
		return "Always"
	}
}

func statLabel(stat models.StatKind) string {
	switch stat {
	case models.StatCurrentStreak:
		return "day streak"
	case models.StatLongestStreak:
		return "day longest streak"
	case models.StatTotalDays:
		return "active days"
	case models.StatMessages:
		return "messages"
	case models.StatVoiceMinutes:
		return "voice minutes"
	case models.StatCommands:
		return "commands"
	case models.StatReactionsGiven:
		return "reactions given"
	case models.StatReactionsReceived:
		return "reactions received"
	default:
		return string(stat)
	}
}
