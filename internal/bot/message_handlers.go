package bot

import (
	"context"
	"strings"
	"txtsummarizer/internal/domain"

	"github.com/go-telegram/bot/models"
)

const hintText = `📎 Send me a \.txt file and press *Summarize*\.`

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	if message.Document != nil {
		return b.handleDocument(ctx, chatID, message.Document)
	}

	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.handleStartCommand(ctx, chatID)
	case strings.HasPrefix(text, "/summarize"):
		return b.startSummary(ctx, chatID)
	case strings.HasPrefix(text, "/cancel"):
		return b.handleCancelCommand(ctx, chatID)
	case strings.HasPrefix(text, "/last"):
		return b.handleLastCommand(ctx, chatID)
	default:
		return b.sendMessage(ctx, chatID, hintText, nil)
	}
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, document *models.Document) error {
	ref := domain.FileRef{
		FileID:   document.FileID,
		FileName: strings.TrimSpace(document.FileName),
		MimeType: strings.TrimSpace(document.MimeType),
		Size:     document.FileSize,
	}

	outcome, err := b.summaries.Select(ctx, chatID, ref)
	if err != nil {
		return b.failed(ctx, chatID, err)
	}

	b.log.InfoContext(ctx, "File is selected",
		"chatID", chatID,
		"fileName", ref.FileName,
		"mimeType", ref.MimeType,
		"size", ref.Size,
		"state", outcome.State)

	return b.sendOutcome(ctx, chatID, outcome)
}
