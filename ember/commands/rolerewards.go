package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/utils"
)

var RoleRewards = discord.SlashCommandCreate{
	Name:        "rolerewards",
	Description: "🎭 Configure achievement role rewards (admin)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show the current role reward settings",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Change role reward settings",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionBool{
					Name:        "enabled",
					Description: "Grant roles for role-granting achievements",
					Required:    false,
				},
				discord.ApplicationCommandOptionString{
					Name:        "prefix",
					Description: "Prefix for created role names",
					Required:    false,
				},
				discord.ApplicationCommandOptionString{
					Name:        "color_policy",
					Description: "Role color source",
					Required:    false,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "Rarity color", Value: models.ColorPolicyRarity},
						{Name: "Brand color", Value: models.ColorPolicyBrand},
					},
				},
				discord.ApplicationCommandOptionBool{
					Name:        "auto_cleanup",
					Description: "Delete reward roles nobody holds",
					Required:    false,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "dm_on_earn",
					Description: "DM members when they earn achievements",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cleanup",
			Description: "Delete reward roles whose achievement has no holders",
		},
	},
}

func RoleRewardsViewHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := b.RoleRewardRepository.GetConfig(ctx, gid)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch role reward settings. Please try again later.")
		}

		links, err := b.RoleRewardRepository.ListRoleLinks(ctx, gid)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch role links. Please try again later.")
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🎭 Role Rewards",
				Description: fmt.Sprintf(
					"**Enabled:** %t\n**Prefix:** `%s`\n**Color policy:** %s\n**Auto cleanup:** %t\n**DM on earn:** %t\n**Linked roles:** %d",
					cfg.Enabled, cfg.RolePrefix, cfg.ColorPolicy, cfg.AutoCleanup, cfg.DMOnEarn, len(links)),
				Color:     utils.EmberColor,
				Timestamp: &now,
			}},
		})
	}
}

func RoleRewardsSetHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := b.RoleRewardRepository.GetConfig(ctx, gid)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch role reward settings. Please try again later.")
		}

		data := e.SlashCommandInteractionData()
		changed := false
		if enabled, ok := data.OptBool("enabled"); ok {
			cfg.Enabled = enabled
			changed = true
		}
		if prefix, ok := data.OptString("prefix"); ok {
			cfg.RolePrefix = prefix
			changed = true
		}
		if policy, ok := data.OptString("color_policy"); ok {
			cfg.ColorPolicy = policy
			changed = true
		}
		if cleanup, ok := data.OptBool("auto_cleanup"); ok {
			cfg.AutoCleanup = cleanup
			changed = true
		}
		if dm, ok := data.OptBool("dm_on_earn"); ok {
			cfg.DMOnEarn = dm
			changed = true
		}
		if !changed {
			return utils.EH.CreateErrorEmbed(e, "Nothing to change; pass at least one option.")
		}

		if err := b.RoleRewardRepository.UpsertConfig(ctx, cfg); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save role reward settings. Please try again later.")
		}
		return utils.EH.CreateSuccessEmbed(e, "Role reward settings saved.")
	}
}

func RoleRewardsCleanupHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}
		if !requireManageGuild(e) {
			return nil
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := b.Reconciler.CleanupOrphanedRoles(ctx, gid)
		if err != nil {
			_, updErr := e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: utils.Ptr("❌ Cleanup failed. Please try again later."),
			})
			return updErr
		}

		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(fmt.Sprintf("✅ Cleanup finished; removed %d orphaned reward role(s).", removed)),
		})
		return err
	}
}
