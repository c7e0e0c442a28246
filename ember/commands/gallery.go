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
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/emberbot/ember/ember/utils"
)

const galleryPageSize = 10

var Gallery = discord.SlashCommandCreate{
	Name:        "gallery",
	Description: "🖼️ Browse your archived media",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "List your most recently archived attachments",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Delete one archived item",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "item",
					Description: "Item number from /gallery view",
					Required:    true,
					MinValue:    utils.Ptr(1),
				},
			},
		},
	},
}

func GalleryViewHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Galleries only exist inside a server.")
		}
		if b.Gallery == nil {
			return utils.EH.CreateErrorEmbed(e, "Media archival is not configured on this bot.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		items, err := b.Gallery.List(ctx, e.User().ID.String(), gid, galleryPageSize)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch your gallery. Please try again later.")
		}
		if len(items) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Your gallery is empty. Image attachments you post are archived automatically.")
		}

		var sb strings.Builder
		for i, item := range items {
			sb.WriteString(fmt.Sprintf("`%d` [%s](%s) · %s · <t:%d:R>\n",
				i+1, item.FileName, b.Gallery.PublicURL(item),
				formatBytes(item.SizeBytes), item.CreatedAt.Unix()))
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🖼️ %s's Gallery", e.User().EffectiveName()),
				Description: sb.String(),
				Color:       utils.EmberColor,
				Footer:      &discord.EmbedFooter{Text: "Use /gallery remove to delete an item"},
				Timestamp:   &now,
			}},
		})
	}
}

func GalleryRemoveHandler(b *ember.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		gid := guildID(e)
		if gid == "" {
			return utils.EH.CreateErrorEmbed(e, "Galleries only exist inside a server.")
		}
		if b.Gallery == nil {
			return utils.EH.CreateErrorEmbed(e, "Media archival is not configured on this bot.")
		}

		index := e.SlashCommandInteractionData().Int("item")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		items, err := b.Gallery.List(ctx, e.User().ID.String(), gid, galleryPageSize)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch your gallery. Please try again later.")
		}
		if index < 1 || index > len(items) {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No item `%d`; your gallery currently shows %d item(s).", index, len(items)))
		}

		item := items[index-1]
		if err := b.Gallery.Remove(ctx, item.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.EH.CreateErrorEmbed(e, "That item is already gone.")
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to delete the item. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted `%s` from your gallery.", item.FileName))
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
