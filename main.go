package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/asylumlabs/asylumbot/asylum"
	"github.com/asylumlabs/asylumbot/asylum/birthday"
	"github.com/asylumlabs/asylumbot/asylum/commands"
	"github.com/asylumlabs/asylumbot/asylum/database"
	"github.com/asylumlabs/asylumbot/asylum/database/repositories"
	"github.com/asylumlabs/asylumbot/asylum/economy/daily"
	"github.com/asylumlabs/asylumbot/asylum/handlers"
	"github.com/asylumlabs/asylumbot/asylum/logger"
	"github.com/asylumlabs/asylumbot/asylum/migration"
	"github.com/asylumlabs/asylumbot/asylum/notifier"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/jonboulle/clockwork"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting Asylum Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	importLegacy := flag.Bool("import-legacy", false, "Import the old bot's daily.json and birthdays.json before starting")
	legacyDir := flag.String("legacy-dir", "data", "Directory containing the legacy JSON files")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := asylum.LoadConfig(*path)
	if err != nil {
		logger.LogError("Failed to load configuration", err)
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := asylum.New(*cfg, version, commit)
	b.DB = db
	b.RewardRepository = repositories.NewRewardRepository(db.BunDB())
	b.AnniversaryRepository = repositories.NewAnniversaryRepository(db.BunDB())
	b.Daily = daily.NewEngine(daily.Config{
		BaseReward:       cfg.Daily.BaseReward,
		StreakMultiplier: cfg.Daily.StreakMultiplier,
		TriviaPasses:     cfg.Daily.TriviaPasses,
	}, b.RewardRepository)

	if *importLegacy {
		importer := migration.NewImporter(b.RewardRepository, b.AnniversaryRepository)
		if err := importer.Run(ctx,
			filepath.Join(*legacyDir, "daily.json"),
			filepath.Join(*legacyDir, "birthdays.json"),
		); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	h := handler.New()
	h.Command("/daily", handlers.WrapWithLogging("daily", commands.DailyHandler(b)))
	h.Command("/birthday", handlers.WrapWithLogging("birthday", commands.BirthdayHandler(b)))
	h.Command("/streaks", handlers.WrapWithLogging("streaks", commands.StreaksHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

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

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	// The catch-up run fires as soon as the scheduler starts, so the gateway
	// has to be up before announcements can deliver.
	job := birthday.NewJob(
		b.AnniversaryRepository,
		b.RewardRepository,
		b.Daily,
		notifier.NewBirthdayNotifier(b.Client, cfg.Birthday.ChannelID),
	)
	b.BirthdayScheduler = birthday.NewScheduler(job, clockwork.NewRealClock())
	b.BirthdayScheduler.Start(context.Background())
	defer b.BirthdayScheduler.Stop()

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
