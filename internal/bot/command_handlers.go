package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"txtsummarizer/internal/bullets"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/markdown"
	"txtsummarizer/internal/session"
)

const welcomeText = `🤖 *Welcome to Text File Summarizer\!*

Upload a text file \(\.txt\) and I'll summarize it for you\!

– Send a \.txt document, then press *Summarize*
– Cancel a running summary with /cancel
– Get your latest summary again with /last`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, welcomeText, nil)
}

// startSummary runs the summary in the background so updates such as
// /cancel keep being handled while the model works.
func (b *Bot) startSummary(ctx context.Context, chatID int64) error {
	if !b.addJob() {
		return errBotStopping
	}

	go func() {
		defer b.jobs.Done()

		jobCtx := b.rootCtx
		if err := b.withSpinner(jobCtx, chatID, func() error {
			return b.runSummary(jobCtx, chatID)
		}); err != nil {
			b.log.ErrorContext(jobCtx, "Failed to run summary",
				"error", err,
				"chatID", chatID)
		}
	}()

	b.log.DebugContext(ctx, "Summary is started",
		"chatID", chatID)

	return nil
}

func (b *Bot) runSummary(ctx context.Context, chatID int64) error {
	var errs []error

	outcome, err := b.summaries.Trigger(ctx, chatID, func(ref domain.FileRef) {
		text := "⏳ Summarizing " + markdown.EscapeV2(ref.FileName) + "\\.\\.\\."
		if sendErr := b.sendMessage(ctx, chatID, text, getCancelKeyboard()); sendErr != nil {
			errs = append(errs, fmt.Errorf("send progress message: %w", sendErr))
		}
	})
	if err != nil {
		errs = append(errs, b.failed(ctx, chatID, fmt.Errorf("trigger: %w", err)))
		return errors.Join(errs...)
	}

	if err = b.sendOutcome(ctx, chatID, outcome); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) handleCancelCommand(ctx context.Context, chatID int64) error {
	if !b.summaries.Cancel(chatID) {
		return b.sendMessage(ctx, chatID, "✖️ Nothing to cancel\\.", nil)
	}

	return b.sendMessage(ctx, chatID, "🛑 Cancelling\\.\\.\\.", nil)
}

func (b *Bot) handleLastCommand(ctx context.Context, chatID int64) error {
	record, err := b.summaries.LastSummary(ctx, chatID)
	if err != nil {
		return b.failed(ctx, chatID, fmt.Errorf("get last summary: %w", err))
	}

	if record == nil {
		return b.sendMessage(ctx, chatID, "✖️ There are no summaries yet\\.", nil)
	}

	profile := b.summaries.Profile()

	var errs []error
	for _, message := range renderRecord(record, profile) {
		if err = b.sendMessage(ctx, chatID, message, nil); err != nil {
			errs = append(errs, fmt.Errorf("send message: %w", err))
		}
	}

	if profile.ExportSummary && len(record.Bullets) > 0 {
		if err = b.sendDocument(ctx, chatID, exportFileName, bullets.Document(record.Bullets).Blob()); err != nil {
			errs = append(errs, fmt.Errorf("send document: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) failed(ctx context.Context, chatID int64, err error) error {
	errs := []error{err}

	if sendErr := b.sendMessage(ctx, chatID, "❌ Failed\\.", nil); sendErr != nil {
		errs = append(errs, fmt.Errorf("send message: %w", sendErr))
	}

	return errors.Join(errs...)
}

func (b *Bot) sendOutcome(ctx context.Context, chatID int64, outcome session.Outcome) error {
	keyboard := outcomeKeyboard(outcome.State)

	var errs []error
	messages := renderOutcome(outcome, b.summaries.Profile())
	for i, message := range messages {
		markup := keyboard
		if i != len(messages)-1 {
			markup = nil
		}

		if err := b.sendMessage(ctx, chatID, message, markup); err != nil {
			errs = append(errs, fmt.Errorf("send message: %w", err))
		}
	}

	if outcome.State == domain.StateDone && strings.TrimSpace(outcome.Export) != "" {
		if err := b.sendDocument(ctx, chatID, exportFileName, outcome.Export); err != nil {
			errs = append(errs, fmt.Errorf("send document: %w", err))
		}
	}

	return errors.Join(errs...)
}
