package ember

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database"
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/emberbot/ember/ember/rolerewards"
	"github.com/emberbot/ember/ember/services"
	"github.com/emberbot/ember/ember/streaks"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	ActivityRepository    repositories.ActivityRepository
	StreakRepository      repositories.StreakRepository
	AchievementRepository repositories.AchievementRepository
	RoleRewardRepository  repositories.RoleRewardRepository
	SocialStatsRepository repositories.SocialStatsRepository
	MediaRepository       repositories.MediaRepository

	Catalog          *achievements.Catalog
	Evaluator        *achievements.Evaluator
	Tracker          *streaks.Tracker
	Scheduler        *streaks.Scheduler
	Reconciler       *rolerewards.Reconciler
	Totals           *services.TotalsService
	Gallery          *services.GalleryService
	LeaderboardImage *services.LeaderboardImageService
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
			gateway.IntentGuildMessageReactions,
			gateway.IntentGuildVoiceStates,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagVoiceStates)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Ember is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the streaks burn 🔥"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
