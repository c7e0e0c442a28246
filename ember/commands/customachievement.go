package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/emberbot/ember/ember/utils"
)

var customIDPattern = regexp.MustCompile(`^[a-z0-9_]{3,64}$`)

var statChoices = []discord.ApplicationCommandOptionChoiceString{
	{Name: "Current streak (days)", Value: string(models.StatCurrentStreak)},
	{Name: "Longest streak (days)", Value: string(models.StatLongestStreak)},
	{Name: "Total active days", Value: string(models.StatTotalDays)},
	{Name: "Messages sent", Value: string(models.StatMessages)},
	{Name: "Voice minutes", Value: string(models.StatVoiceMinutes)},
	{Name: "Commands run", Value: string(models.StatCommands)},
	{Name: "Reactions given", Value: string(models.StatReactionsGiven)},
	{Name: "Reactions received", Value: string(models.StatReactionsReceived)},
}

var rarityChoices = []discord.ApplicationCommandOptionChoiceString{
	{Name: "Common", Value: string(models.RarityCommon)},
	{Name: "Uncommon", Value: string(models.RarityUncommon)},
	{Name: "Rare", Value: string(models.RarityRare)},
	{Name: "Epic", Value: string(models.RarityEpic)},
	{Name: "Legendary", Value: string(models.RarityLegendary)},
	{Name: "Mythic", Value: string(models.RarityMythic)},
}

var CustomAchievement = discord.SlashCommandCreate{
	Name:        "customachievement",
	Description: "🛠️ Manage this server's custom achievements (admin)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Create a custom threshold achievement",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "id",
					Description: "Stable id (lowercase letters, digits, underscores)",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "title",
					Description: "Display title",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "description",
					Description: "What the achievement is for",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "stat",
					Description: "Stat the rule checks",
					Required:    true,
					Choices:     statChoices,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "value",
					Description: "Threshold the stat must reach",
					Required:    true,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "rarity",
					Description: "Display rarity (default rare)",
					Required:    false,
					Choices:     rarityChoices,
				},
				discord.ApplicationCommandOptionString{
					Name:        "emoji",
					Description: "Display emoji",
					Required:    false,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "grant_role",
					Description: "Grant a reward role when earned",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "edit",
			Description: "Edit a custom achievement's rule or display fields",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "id",
					Description:  "Custom achievement to edit",
					Required:     true,
					Autocomplete: true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "title",
					Description: "New display title",
					Required:    false,
				},
				discord.ApplicationCommandOptionString{
					Name:        "description",
					Description: "New description",
					Required:    false,
				},
				discord.ApplicationCommandOptionString{
					Name:        "stat",
					Description: "New stat for the rule",
					Required:    false,
					Choices:     statChoices,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "value",
					Description: "New threshold",
					Required:    false,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "rarity",
					Description: "New rarity",
					Required:    false,
					Choices:     rarityChoices,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a custom achievement (awards are kept)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "id",
					Description:  "Custom achievement to delete",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List this server's custom achievements",
		},
	},
}

func CustomAchievementCreateHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		id := strings.TrimSpace(data.String("id"))
		if !customIDPattern.MatchString(id) {
			return utils.EH.CreateErrorEmbed(e, "The id must be 3-64 characters of lowercase letters, digits or underscores.")
		}

		rarity := models.RarityRare
		if r, ok := data.OptString("rarity"); ok {
			rarity = models.Rarity(r)
		}
		emoji := "🏅"
		if em, ok := data.OptString("emoji"); ok && em != "" {
			emoji = em
		}

		def := &models.AchievementDefinition{
			AchievementID: id,
			GuildID:       gid,
			Title:         strings.TrimSpace(data.String("title")),
			Description:   strings.TrimSpace(data.String("description")),
			Emoji:         emoji,
			Category:      models.CategoryCustom,
			Rarity:        rarity,
			CheckType:     models.CheckTypeThreshold,
			Criteria: models.CriteriaSpec{Criteria: models.ThresholdCriteria{
				Stat:  models.StatKind(data.String("stat")),
				Value: int64(data.Int("value")),
			}},
			GrantRole: data.Bool("grant_role"),
			Points:    rarityPoints(rarity),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.AchievementRepository.CreateCustomDefinition(ctx, def); err != nil {
			if errors.Is(err, repositories.ErrAlreadyExists) {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("An achievement with id `%s` already exists in this server.", id))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to create the achievement. Please try again later.")
		}

		if err := b.Catalog.LoadDefinitions(ctx); err != nil {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Created %s **%s**, but the catalog refresh failed; it becomes awardable on the next sweep.", emoji, def.Title))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Created %s **%s** (`%s`).", emoji, def.Title, id))
	}
}

func CustomAchievementEditHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		data := e.SlashCommandInteractionData()
		id := strings.TrimSpace(data.String("id"))

		existing, ok := b.Catalog.ByID(gid, id)
		if !ok || !existing.IsCustom() {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No custom achievement with id `%s` in this server.", id))
		}

		def := *existing
		if title, ok := data.OptString("title"); ok {
			def.Title = strings.TrimSpace(title)
		}
		if description, ok := data.OptString("description"); ok {
			def.Description = strings.TrimSpace(description)
		}
		if r, ok := data.OptString("rarity"); ok {
			def.Rarity = models.Rarity(r)
			def.Points = rarityPoints(def.Rarity)
		}

		stat, hasStat := data.OptString("stat")
		value, hasValue := data.OptInt("value")
		if hasStat || hasValue {
			current, isThreshold := def.Criteria.Criteria.(models.ThresholdCriteria)
			if !isThreshold {
				return utils.EH.CreateErrorEmbed(e, "Only threshold rules can be edited here; recreate the achievement instead.")
			}
			if hasStat {
				current.Stat = models.StatKind(stat)
			}
			if hasValue {
				current.Value = int64(value)
			}
			def.Criteria = models.CriteriaSpec{Criteria: current}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.AchievementRepository.UpdateCustomDefinition(ctx, &def); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No custom achievement with id `%s` in this server.", id))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to update the achievement. Please try again later.")
		}

		if err := b.Catalog.LoadDefinitions(ctx); err != nil {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Updated `%s`; changes apply on the next catalog refresh.", id))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Updated `%s`.", id))
	}
}

func CustomAchievementDeleteHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		id := strings.TrimSpace(e.SlashCommandInteractionData().String("id"))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.AchievementRepository.DeleteCustomDefinition(ctx, gid, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No custom achievement with id `%s` in this server.", id))
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to delete the achievement. Please try again later.")
		}

		if err := b.Catalog.LoadDefinitions(ctx); err != nil {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted `%s`; the catalog refreshes on the next sweep. Existing awards are kept.", id))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted `%s`. Existing awards are kept.", id))
	}
}

func CustomAchievementListHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		customs := b.Catalog.CustomForGuild(gid)
		if len(customs) == 0 {
			return utils.EH.CreateInfoEmbed(e, "This server has no custom achievements yet. Use `/customachievement create` to add one.")
		}

		var sb strings.Builder
		for _, def := range customs {
			sb.WriteString(fmt.Sprintf("%s **%s** (`%s`) · %s · %dpt\n", def.Emoji, def.Title, def.AchievementID, def.Rarity, def.Points))
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🛠️ Custom Achievements (%d)", len(customs)),
				Description: sb.String(),
				Color:       utils.EmberColor,
				Timestamp:   &now,
			}},
		})
	}
}

// CustomAchievementAutocompleteHandler completes the id option from the
// guild's custom definitions only.
func CustomAchievementAutocompleteHandler(b *ember.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		gid := ""
		if e.GuildID() != nil {
			gid = e.GuildID().String()
		}

		choices := make([]discord.AutocompleteChoice, 0, 25)
		for _, def := range b.Catalog.CustomForGuild(gid) {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  fmt.Sprintf("%s %s", def.Emoji, def.Title),
				Value: def.AchievementID,
			})
			if len(choices) >= 25 {
				break
			}
		}
		return e.AutocompleteResult(choices)
	}
}

func rarityPoints(r models.Rarity) int {
	switch r {
	case models.RarityCommon:
		return 5
	case models.RarityUncommon:
		return 10
	case models.RarityRare:
		return 20
	case models.RarityEpic:
		return 40
	case models.RarityLegendary:
		return 75
	case models.RarityMythic:
		return 150
	default:
		return 10
	}
}
