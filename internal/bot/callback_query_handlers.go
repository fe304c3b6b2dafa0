package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID := callbackChatID(callback)
	data := strings.TrimSpace(callback.Data)

	switch data {
	case summarizeCallbackData:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.startSummary(ctx, chatID)
		})
	case cancelCallbackData:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleCancelCommand(ctx, chatID)
		})
	}

	return b.withEmptyCallbackAnswer(ctx, callback, func() error {
		return nil
	})
}

func (b *Bot) withEmptyCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	}); err != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", err))
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}
