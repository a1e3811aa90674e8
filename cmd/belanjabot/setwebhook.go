package main

import (
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/belanjabot/belanjabot/pkg/config"
)

// runSetWebhook registers both bots' webhook URLs with Telegram.
func runSetWebhook(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.WebhookURL == "" {
		return errors.New("WEBHOOK_URL environment variable is required")
	}

	if err := registerWebhook(logger, cfg.Bot1Token, cfg.WebhookURL+"/webhook/bot1"); err != nil {
		return fmt.Errorf("registering bot1 webhook: %w", err)
	}
	if err := registerWebhook(logger, cfg.Bot2Token, cfg.WebhookURL+"/webhook/bot2"); err != nil {
		return fmt.Errorf("registering bot2 webhook: %w", err)
	}

	return nil
}

func registerWebhook(logger *slog.Logger, token, url string) error {
	tg, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("creating bot client: %w", err)
	}

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("building webhook config: %w", err)
	}
	if _, err := tg.Request(wh); err != nil {
		return fmt.Errorf("setting webhook: %w", err)
	}

	info, err := tg.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("reading webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		logger.Warn("webhook reported a recent delivery error",
			"bot", tg.Self.UserName,
			"last_error", info.LastErrorMessage,
		)
	}

	logger.Info("webhook registered",
		"bot", tg.Self.UserName,
		"url", url,
		"pending_updates", info.PendingUpdateCount,
	)
	return nil
}
