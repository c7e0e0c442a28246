package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/utils"
)

const achievementsPerPage = 8

var Achievements = discord.SlashCommandCreate{
	Name:        "achievements",
	Description: "🏆 Browse the achievement catalog and your progress",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "category",
			Description: "Only show one category",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Streak", Value: models.CategoryStreak},
				{Name: "Total days", Value: models.CategoryTotal},
				{Name: "Messages", Value: models.CategoryMessage},
				{Name: "Voice", Value: models.CategoryVoice},
				{Name: "Commands", Value: models.CategoryCommand},
				{Name: "Social", Value: models.CategorySocial},
				{Name: "Special", Value: models.CategorySpecial},
				{Name: "Combo", Value: models.CategoryCombo},
				{Name: "Meta", Value: models.CategoryMeta},
				{Name: "Custom", Value: models.CategoryCustom},
			},
		},
		discord.ApplicationCommandOptionString{
			Name:        "rarity",
			Description: "Only show one rarity",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Common", Value: string(models.RarityCommon)},
				{Name: "Uncommon", Value: string(models.RarityUncommon)},
				{Name: "Rare", Value: string(models.RarityRare)},
				{Name: "Epic", Value: string(models.RarityEpic)},
				{Name: "Legendary", Value: string(models.RarityLegendary)},
				{Name: "Mythic", Value: string(models.RarityMythic)},
			},
		},
	},
}

func AchievementsHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Achievements only exist inside a server.")
		}

		data := e.SlashCommandInteractionData()
		category, _ := data.OptString("category")
		rarity, _ := data.OptString("rarity")

		defs := b.Catalog.ForGuild(gid)
		filtered := make([]*models.AchievementDefinition, 0, len(defs))
		for _, def := range defs {
			if category != "" && def.Category != category {
				continue
			}
			if rarity != "" && string(def.Rarity) != rarity {
				continue
			}
			filtered = append(filtered, def)
		}
		if len(filtered) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No achievements match that filter.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		earned, err := b.AchievementRepository.AwardedIDs(ctx, e.User().ID.String(), gid)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch your progress. Please try again later.")
		}

		totalPages := int(math.Ceil(float64(len(filtered)) / float64(achievementsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * achievementsPerPage
				endIdx := min(startIdx+achievementsPerPage, len(filtered))

				var description strings.Builder
				for _, def := range filtered[startIdx:endIdx] {
					marker := "⬜"
					if _, ok := earned[def.AchievementID]; ok {
						marker = "✅"
					}
					seasonal := ""
					if def.Seasonal() {
						seasonal = " 🗓️"
					}
					description.WriteString(fmt.Sprintf("%s %s **%s**%s · %s · %dpt\n`%s` — %s\n\n",
						marker, def.Emoji, def.Title, seasonal, def.Rarity, def.Points,
						def.AchievementID, def.Description))
				}

				embed.
					SetTitle("🏆 Achievements").
					SetDescription(description.String()).
					SetColor(utils.EmberColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d earned of %d shown", page+1, totalPages, len(earned), len(filtered)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
