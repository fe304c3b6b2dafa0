package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"txtsummarizer/internal/bot"
	"txtsummarizer/internal/config"
	"txtsummarizer/internal/database"
	"txtsummarizer/internal/scheduler"
	"txtsummarizer/internal/session"
	"txtsummarizer/internal/summarizer"
)

const modelLoadTimeout = 2 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("Failed to load config",
			"error", err)

		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err = run(cfg, log); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	profile, err := cfg.SummaryProfile()
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve profile",
			"error", err,
			"profile", cfg.Profile,
			"backend", cfg.Backend)

		return err
	}

	build, err := summarizer.NewBuildFunc(cfg.Backend, cfg.Credentials())
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve backend",
			"error", err,
			"backend", cfg.Backend)

		return err
	}

	holder := summarizer.NewHolder(profile.ModelID, build)

	s, err := loadSummarizer(ctx, holder)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load summarization model",
			"error", err,
			"backend", cfg.Backend,
			"modelID", holder.ModelID())

		return err
	}
	log.InfoContext(ctx, "Summarizer is initialized",
		"backend", cfg.Backend,
		"profile", profile.Name,
		"modelID", holder.ModelID())

	fetcher, err := bot.NewFileFetcher(cfg.Token, cfg.MaxUploadBytes)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize file fetcher",
			"error", err)

		return err
	}

	orch := session.New(db, fetcher, s, profile, log,
		session.WithTimeout(cfg.SummaryTimeout))
	if err = orch.Recover(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to recover sessions",
			"error", err)

		return err
	}

	botInst, err := bot.New(cfg.Token, orch, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return err
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, db, cfg.HistoryTTL, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.HousekeepingSpec)

		return err
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.HousekeepingSpec,
		"historyRetention", cfg.HistoryTTL.String())

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"summaryTimeout", cfg.SummaryTimeout.String())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}

// loadSummarizer constructs the model before the bot starts taking updates.
func loadSummarizer(ctx context.Context, holder *summarizer.Holder) (summarizer.Summarizer, error) {
	loadCtx, cancel := context.WithTimeout(ctx, modelLoadTimeout)
	defer cancel()

	return holder.Get(loadCtx)
}
