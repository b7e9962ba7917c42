package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"marketmind/internal/analyst"
	"marketmind/internal/config"
	"marketmind/internal/notifier"
	"marketmind/internal/publisher"
	"marketmind/internal/service"
	"marketmind/internal/source/calendar"
	"marketmind/internal/source/earnings"
	"marketmind/internal/source/rss"
	"marketmind/internal/storage/postgres"
)

const runTimeout = 10 * time.Minute

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load display timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// An unreachable store disables persistence and the watchlist,
	// never the whole run.
	var store service.DocumentStore
	var txManager service.TransactionManager
	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Warn("database unreachable, persistence disabled", "error", err)
		} else {
			defer db.Close()
			store = postgres.NewDocumentStore(db)
			txManager = postgres.NewTransactionManager(db)
			logger.Info("connected to database")
		}
	} else {
		logger.Info("database not configured, persistence disabled")
	}

	calendarSource := calendar.New(calendar.Config{
		BaseURL:       cfg.Calendar.BaseURL,
		Countries:     cfg.Calendar.Countries,
		ImportanceMin: cfg.Calendar.ImportanceMin,
		ExtraDays:     cfg.Calendar.ExtraDays,
		Timeout:       cfg.Calendar.Timeout,
	}, loc, logger)

	newsSource := rss.New(rss.Config{
		FeedURL:         cfg.News.FeedURL,
		MaxItems:        cfg.News.MaxItems,
		MaxAge:          cfg.News.MaxAge,
		ExcerptMaxChars: cfg.AI.ExcerptMaxChars,
		Timeout:         cfg.News.Timeout,
	}, logger)

	earningsSource := earnings.New(earnings.Config{
		BaseURL:      cfg.Earnings.BaseURL,
		RequestDelay: cfg.Earnings.RequestDelay,
		Timeout:      cfg.Earnings.Timeout,
	}, loc, logger)

	var aiAnalyst service.Analyst
	if cfg.AI.Enabled() {
		a, err := analyst.New(ctx, analyst.Config{
			APIKey:           cfg.AI.APIKey,
			Model:            cfg.AI.Model,
			ScoreThreshold:   cfg.AI.ScoreThreshold,
			AnalysisMaxChars: cfg.AI.AnalysisMaxChars,
			Timeout:          cfg.AI.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("AI service unavailable, scoring disabled", "error", err)
		} else {
			aiAnalyst = a
		}
	} else {
		logger.Info("AI service not configured, scoring disabled")
	}

	var channel service.Notifier
	if cfg.Telegram.Enabled() {
		channel = notifier.New(notifier.Config{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Timeout:  cfg.Telegram.Timeout,
		}, logger)
	} else {
		logger.Info("notification channel not configured, notifications disabled")
	}

	var alerts service.Publisher
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Warn("rabbitmq unreachable, alert publishing disabled", "error", err)
		} else {
			defer rabbitMQ.Close()
			alerts = rabbitMQ
		}
	}

	pipeline := service.NewPipeline(
		calendarSource,
		newsSource,
		earningsSource,
		aiAnalyst,
		store,
		txManager,
		channel,
		alerts,
		loc,
		logger,
	)

	runCtx, cancelRun := context.WithTimeout(ctx, runTimeout)
	defer cancelRun()

	if _, err := pipeline.Run(runCtx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
