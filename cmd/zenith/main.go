package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/bot"
	"github.com/zenithmode/zenith/internal/llm"
	"github.com/zenithmode/zenith/internal/orchestrator"
	"github.com/zenithmode/zenith/internal/recommend"
	"github.com/zenithmode/zenith/internal/session"
	"github.com/zenithmode/zenith/internal/storage"
	"github.com/zenithmode/zenith/internal/youtube"
	"github.com/zenithmode/zenith/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Restore persisted state before any operation may run
	sessions := session.NewStore()
	snap, err := store.Load(context.Background())
	if err != nil {
		logger.Fatal("Failed to load persisted state", zap.Error(err))
	}
	sessions.Restore(snap)

	// Providers are optional: a missing credential disables the track but
	// never crashes the assistant.
	var llmClient llm.Client
	if c, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger); err != nil {
		logger.Warn("OpenAI client unavailable", zap.Error(err))
	} else {
		llmClient = c
	}

	var engine *recommend.Engine
	if yt, err := youtube.NewHTTPClient(cfg.YouTube.APIKey, logger); err != nil {
		logger.Warn("YouTube client unavailable", zap.Error(err))
	} else {
		engine = recommend.NewEngine(yt, logger)
	}

	orch := orchestrator.New(sessions, llmClient, engine,
		cfg.OpenAI.SuggestionMaxTokens, cfg.OpenAI.ChatMaxTokens, logger)

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, sessions, orch, store, cfg.YouTube.MaxResults, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
