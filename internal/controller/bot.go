package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/lucagreco-dev/prenota_bot/internal/engine"
	"github.com/lucagreco-dev/prenota_bot/internal/profile"
)

type BotController struct {
	bot      *bot.Bot
	handlers *Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	schedulingEngine *engine.Engine,
	profiles profile.Store,
	defaultBusinessID string,
	logger *zap.Logger,
) *BotController {
	// Sessioni in memoria: ultimo appuntamento per chat
	sessions := NewSessionManager()

	handlers := NewHandlers(
		schedulingEngine,
		profiles,
		sessions,
		defaultBusinessID,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterHandlers registra tutti gli handler del bot
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)

	// Tutto il resto è conversazione: va al motore di scheduling
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	return c.setCommands(ctx)
}

// setCommands imposta il menu comandi del bot
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Inizia a prenotare"},
		{Command: "help", Description: "❓ Esempi e istruzioni"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start avvia il bot
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
