package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/models"
)

// Discord refuses DMs to users who block them with this JSON error code.
const errCodeCannotDMUser = 50007

// DMNotifier delivers achievement DMs over the gateway client's REST API.
// It implements achievements.Notifier.
type DMNotifier struct {
	client bot.Client
}

func NewDMNotifier(client bot.Client) *DMNotifier {
	return &DMNotifier{client: client}
}

func (n *DMNotifier) NotifyAchievement(ctx context.Context, userID string, def *models.AchievementDefinition) achievements.NotifyStatus {
	id, err := snowflake.Parse(userID)
	if err != nil {
		slog.Error("Invalid user id for achievement DM",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return achievements.NotifyFailed
	}

	dmChannel, err := n.client.Rest().CreateDMChannel(id, rest.WithCtx(ctx))
	if err != nil {
		return n.classify(err, userID, def.AchievementID)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("%s Achievement Unlocked!", def.Emoji)).
		SetDescription(fmt.Sprintf("**%s**\n%s", def.Title, def.Description)).
		SetColor(def.Rarity.Color()).
		AddField("Rarity", string(def.Rarity), true).
		AddField("Points", fmt.Sprintf("%d", def.Points), true).
		SetTimestamp(time.Now()).
		Build()

	_, err = n.client.Rest().CreateMessage(dmChannel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}, rest.WithCtx(ctx))
	if err != nil {
		return n.classify(err, userID, def.AchievementID)
	}

	return achievements.NotifyDelivered
}

// classify separates "recipient blocks DMs" from genuine delivery failures.
func (n *DMNotifier) classify(err error, userID, achievementID string) achievements.NotifyStatus {
	var restErr rest.Error
	if errors.As(err, &restErr) && int(restErr.Code) == errCodeCannotDMUser {
		return achievements.NotifySuppressed
	}

	slog.Error("Achievement DM delivery failed",
		slog.String("user_id", userID),
		slog.String("achievement_id", achievementID),
		slog.Any("error", err))
	return achievements.NotifyFailed
}
