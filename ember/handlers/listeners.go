package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"

	"github.com/emberbot/ember/ember/services"
)

const eventTimeout = 10 * time.Second

// MessageListener feeds message events into the activity pipeline and
// archives image attachments into the sender's gallery.
func MessageListener(feed *ActivityFeed, gallery *services.GalleryService) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.Message.Author.System || e.GuildID == nil {
			return
		}

		userID := e.Message.Author.ID.String()
		guildID := e.GuildID.String()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			feed.OnMessage(ctx, userID, guildID)

			if gallery == nil {
				return
			}
			for _, attachment := range e.Message.Attachments {
				contentType := ""
				if attachment.ContentType != nil {
					contentType = *attachment.ContentType
				}
				if !strings.HasPrefix(contentType, "image/") {
					continue
				}
				if _, err := gallery.Archive(ctx, userID, guildID, e.MessageID.String(), attachment.Filename, contentType, attachment.URL); err != nil {
					slog.Error("Failed to archive attachment",
						slog.String("user_id", userID),
						slog.String("file", attachment.Filename),
						slog.Any("error", err))
				}
			}
		}()
	})
}

// ReactionListener credits social counters for both sides of a reaction.
// The receiving author comes from a message lookup; if that fails only the
// giver is credited.
func ReactionListener(feed *ActivityFeed) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		if e.Member.User.Bot {
			return
		}

		giverID := e.UserID.String()
		guildID := e.GuildID.String()
		client := e.Client()
		channelID := e.ChannelID
		messageID := e.MessageID

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			receiverID := ""
			if msg, err := client.Rest().GetMessage(channelID, messageID); err != nil {
				slog.Debug("Could not resolve reaction recipient",
					slog.String("message_id", messageID.String()),
					slog.Any("error", err))
			} else if !msg.Author.Bot {
				receiverID = msg.Author.ID.String()
			}

			feed.OnReaction(ctx, giverID, receiverID, guildID)
		}()
	})
}

// VoiceListener tracks channel joins and leaves; moving between channels
// keeps the session open.
func VoiceListener(feed *ActivityFeed) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildVoiceStateUpdate) {
		if e.Member.User.Bot {
			return
		}

		userID := e.VoiceState.UserID.String()
		guildID := e.VoiceState.GuildID.String()

		joined := e.OldVoiceState.ChannelID == nil && e.VoiceState.ChannelID != nil
		left := e.OldVoiceState.ChannelID != nil && e.VoiceState.ChannelID == nil

		switch {
		case joined:
			feed.VoiceJoin(userID, guildID)
		case left:
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
				defer cancel()
				feed.VoiceLeave(ctx, userID, guildID)
			}()
		}
	})
}
