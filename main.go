package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/emberbot/ember/ember"
	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/commands"
	"github.com/emberbot/ember/ember/database"
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/emberbot/ember/ember/handlers"
	"github.com/emberbot/ember/ember/logger"
	"github.com/emberbot/ember/ember/migration"
	"github.com/emberbot/ember/ember/rolerewards"
	"github.com/emberbot/ember/ember/services"
	"github.com/emberbot/ember/ember/streaks"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Ember",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	legacyMongoURI := flag.String("import-legacy", "", "Mongo URI of the predecessor bot; runs the import and exits")
	legacyMongoName := flag.String("import-legacy-db", "ember_legacy", "Mongo database name for -import-legacy")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := ember.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	if *legacyMongoURI != "" {
		importer := migration.NewImporter(db.BunDB(), *legacyMongoURI, *legacyMongoName)
		if err := importer.ImportAll(ctx); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	b := ember.New(*cfg, version, commit)
	b.DB = db

	b.ActivityRepository = repositories.NewActivityRepository(db.BunDB())
	b.StreakRepository = repositories.NewStreakRepository(db.BunDB())
	b.AchievementRepository = repositories.NewAchievementRepository(db.BunDB())
	b.RoleRewardRepository = repositories.NewRoleRewardRepository(db.BunDB())
	b.SocialStatsRepository = repositories.NewSocialStatsRepository(db.BunDB())
	b.MediaRepository = repositories.NewMediaRepository(db.BunDB())

	b.Catalog = achievements.NewCatalog(b.AchievementRepository)
	if err := b.Catalog.LoadDefinitions(ctx); err != nil {
		slog.Error("Failed to load achievement catalog", slog.Any("error", err))
		os.Exit(-1)
	}

	b.Totals = services.NewTotalsService(b.StreakRepository, b.ActivityRepository, b.SocialStatsRepository)
	b.Tracker = streaks.NewTracker(b.StreakRepository, b.AchievementRepository, b.Catalog, cfg.Activity.MaxFreezes)

	if cfg.Spaces.Key != "" {
		gallery, err := services.NewGalleryService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.GalleryRoot,
			b.MediaRepository,
		)
		if err != nil {
			slog.Error("Failed to initialize media gallery", slog.Any("error", err))
			os.Exit(-1)
		}
		b.Gallery = gallery
	} else {
		slog.Info("Media gallery disabled: no Spaces credentials configured")
	}

	b.LeaderboardImage = services.NewLeaderboardImageService()

	if err = b.SetupBot(bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	// Client-dependent wiring: role reconciler, DM notifier, evaluator,
	// activity feed, command routes and gateway listeners.
	b.Reconciler = rolerewards.NewReconciler(
		rolerewards.NewDisgoRoleManager(b.Client),
		b.RoleRewardRepository,
		b.AchievementRepository,
		b.Catalog,
	)
	b.Evaluator = achievements.NewEvaluator(achievements.EvaluatorConfig{
		Catalog:  b.Catalog,
		Repo:     b.AchievementRepository,
		Rewards:  b.RoleRewardRepository,
		Stats:    b.Totals,
		Specials: achievements.NewSpecialChecker(b.ActivityRepository),
		Roles:    b.Reconciler,
		Notifier: services.NewDMNotifier(b.Client),
	})

	feed := handlers.NewActivityFeed(
		b.ActivityRepository,
		b.SocialStatsRepository,
		b.Tracker,
		b.Evaluator,
		cfg.Activity.TouchDebounce(),
		cfg.Activity.EvalDebounce(),
	)

	h := handler.New()

	// Streak and achievement commands
	h.Command("/streak", handlers.WrapWithLogging("streak", feed, commands.StreakHandler(b)))
	h.Command("/achievements", handlers.WrapWithLogging("achievements", feed, commands.AchievementsHandler(b)))
	h.Command("/achievement/info", handlers.WrapWithLogging("achievement info", feed, commands.AchievementInfoHandler(b)))
	h.Autocomplete("/achievement/info", commands.AchievementAutocompleteHandler(b))
	h.Command("/streakleaderboard", handlers.WrapWithLogging("streakleaderboard", feed, commands.StreakLeaderboardHandler(b)))

	// Admin commands
	h.Command("/award", handlers.WrapWithLogging("award", feed, commands.AwardHandler(b)))
	h.Autocomplete("/award", commands.AchievementAutocompleteHandler(b))
	h.Command("/unaward", handlers.WrapWithLogging("unaward", feed, commands.UnawardHandler(b)))
	h.Autocomplete("/unaward", commands.AchievementAutocompleteHandler(b))
	h.Command("/customachievement/create", handlers.WrapWithLogging("customachievement create", feed, commands.CustomAchievementCreateHandler(b)))
	h.Command("/customachievement/edit", handlers.WrapWithLogging("customachievement edit", feed, commands.CustomAchievementEditHandler(b)))
	h.Command("/customachievement/delete", handlers.WrapWithLogging("customachievement delete", feed, commands.CustomAchievementDeleteHandler(b)))
	h.Command("/customachievement/list", handlers.WrapWithLogging("customachievement list", feed, commands.CustomAchievementListHandler(b)))
	h.Autocomplete("/customachievement/edit", commands.CustomAchievementAutocompleteHandler(b))
	h.Autocomplete("/customachievement/delete", commands.CustomAchievementAutocompleteHandler(b))
	h.Command("/rolerewards/view", handlers.WrapWithLogging("rolerewards view", feed, commands.RoleRewardsViewHandler(b)))
	h.Command("/rolerewards/set", handlers.WrapWithLogging("rolerewards set", feed, commands.RoleRewardsSetHandler(b)))
	h.Command("/rolerewards/cleanup", handlers.WrapWithLogging("rolerewards cleanup", feed, commands.RoleRewardsCleanupHandler(b)))

	// Gallery and system commands
	h.Command("/gallery/view", handlers.WrapWithLogging("gallery view", feed, commands.GalleryViewHandler(b)))
	h.Command("/gallery/remove", handlers.WrapWithLogging("gallery remove", feed, commands.GalleryRemoveHandler(b)))
	h.Command("/version", commands.VersionHandler(b))

	b.Client.AddEventListeners(
		h,
		handlers.MessageListener(feed, b.Gallery),
		handlers.ReactionListener(feed),
		handlers.VoiceListener(feed),
	)

	b.Scheduler = streaks.NewScheduler(b.Tracker, b.ActivityRepository, b.Catalog, b.Evaluator, cfg.Activity.SweepInterval())

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	b.Scheduler.Start(runCtx)

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Ember is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down Ember...")
}
