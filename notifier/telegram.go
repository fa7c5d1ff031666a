/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notifier

import (
	"context"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/suparena/stockwatch/errors"
)

// chatID addresses a chat by its numeric id or @username.
type chatID string

func (c chatID) Recipient() string { return string(c) }

// TelegramSender sends Markdown messages through the Telegram bot API.
type TelegramSender struct {
	bot *tele.Bot
}

// TelegramConfig configures the bot client. APIURL defaults to the public API.
type TelegramConfig struct {
	Token   string
	APIURL  string
	Timeout time.Duration
}

// NewTelegramSender creates an offline bot: no getMe round-trip and no update polling.
func NewTelegramSender(cfg TelegramConfig) (*TelegramSender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.NewValidationError("bot_token", "telegram bot token is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &TelegramSender{bot: b}, nil
}

// Send delivers text to recipient with Markdown parse mode.
func (s *TelegramSender) Send(ctx context.Context, recipient, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(chatID(recipient), text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
	return err
}
