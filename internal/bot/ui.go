package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const typingInterval = 4 * time.Second

// withSpinner keeps the typing indicator on while fn runs.
func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinnerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			b.sendTyping(spinnerCtx, chatID)

			select {
			case <-spinnerCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	err := fn()

	cancel()
	<-done

	return err
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	if _, err := b.api.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil && !errors.Is(err, context.Canceled) {
		b.log.DebugContext(ctx, "Failed to send typing action",
			"error", err,
			"chatID", chatID)
	}
}

func (b *Bot) sendMessage(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard *models.InlineKeyboardMarkup,
) error {
	params := &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      strings.ToValidUTF8(text, "�"),
		ParseMode: models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: tgbot.True(),
		},
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}

		return nil
	})
}

func (b *Bot) sendDocument(ctx context.Context, chatID int64, fileName, content string) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID: chatID,
			Document: &models.InputFileUpload{
				Filename: fileName,
				Data:     strings.NewReader(content),
			},
		}); err != nil {
			return fmt.Errorf("send document: %w", err)
		}

		return nil
	})
}
