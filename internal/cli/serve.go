package cli

import (
	"context"
	"fmt"
	"time"

	"alyabot/internal/config"
	"alyabot/internal/conversation"
	"alyabot/internal/enrichment"
	"alyabot/internal/handler"
	"alyabot/internal/middleware"
	"alyabot/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func newServeCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger)
		},
	}
}

func runServe(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Starting Alya bot")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Configuration loaded successfully",
		zap.String("store", cfg.Store.Backend),
		zap.String("sessions", cfg.Session.Backend),
	)

	wordRepo, closeWords, err := openWordRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeWords()

	sessions, closeSessions, err := openSessionRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	generator, err := enrichment.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	gateway := enrichment.NewGateway(generator, cfg.EnrichTimeout(), logger)

	// Initialize services
	wordService := service.NewWordService(wordRepo, gateway, logger)
	quizService := service.NewQuizService(logger)
	machine := conversation.NewMachine(sessions, wordService, quizService, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			logger.Error("Failed to handle update", fields...)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram bot initialized")

	bot.Use(middleware.LoggingMiddleware(logger))
	h := handler.NewHandler(bot, machine, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, stopping bot...")
	bot.Stop()
	logger.Info("Bot stopped gracefully")

	return nil
}
