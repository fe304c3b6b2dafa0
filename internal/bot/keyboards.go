package bot

import (
	"txtsummarizer/internal/domain"

	"github.com/go-telegram/bot/models"
)

const (
	summarizeCallbackData = "summarize"
	cancelCallbackData    = "cancel"
)

func getSummarizeKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📝 Summarize", CallbackData: summarizeCallbackData}},
		},
	}
}

func getCancelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✖️ Cancel", CallbackData: cancelCallbackData}},
		},
	}
}

func outcomeKeyboard(state domain.State) *models.InlineKeyboardMarkup {
	switch state {
	case domain.StateReady, domain.StateFailed:
		return getSummarizeKeyboard()
	case domain.StateRunning:
		return getCancelKeyboard()
	default:
		return nil
	}
}
