package bot

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/ratelimiter"
	"txtsummarizer/internal/session"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const updateProcessingTimeout = 60 * time.Second

var errBotStopping = errors.New("bot is stopping")

// Summaries is the per-chat summarize flow the bot drives.
type Summaries interface {
	Select(ctx context.Context, chatID int64, ref domain.FileRef) (session.Outcome, error)
	Trigger(ctx context.Context, chatID int64, started func(domain.FileRef)) (session.Outcome, error)
	Cancel(chatID int64) bool
	LastSummary(ctx context.Context, chatID int64) (*domain.SummaryRecord, error)
	Profile() domain.Profile
}

type Bot struct {
	api          *tgbot.Bot
	rateLimiter  *ratelimiter.RateLimiter
	summaries    Summaries
	allowedUsers []int64
	log          *slog.Logger

	jobsMu  sync.Mutex
	jobs    sync.WaitGroup
	stopped bool
	rootCtx context.Context
}

func New(
	token string,
	summaries Summaries,
	allowedUsers []int64,
	log *slog.Logger,
	opts ...tgbot.Option,
) (*Bot, error) {
	b := &Bot{
		rateLimiter:  ratelimiter.New(log),
		summaries:    summaries,
		allowedUsers: allowedUsers,
		log:          log,
		rootCtx:      context.Background(),
	}

	opts = append([]tgbot.Option{
		tgbot.WithDefaultHandler(b.handleUpdate),
		tgbot.WithMiddlewares(b.allowedUsersMiddleware),
	}, opts...)

	api, err := tgbot.New(strings.TrimSpace(token), opts...)
	if err != nil {
		b.rateLimiter.Stop()
		return nil, err
	}
	b.api = api

	return b, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.rootCtx = ctx
	b.api.Start(ctx)
}

// Stop refuses new summaries, waits for running ones to finish and stops sending.
func (b *Bot) Stop() {
	b.jobsMu.Lock()
	b.stopped = true
	b.jobsMu.Unlock()

	b.jobs.Wait()

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) addJob() bool {
	b.jobsMu.Lock()
	defer b.jobsMu.Unlock()

	if b.stopped {
		return false
	}
	b.jobs.Add(1)

	return true
}

func (b *Bot) allowedUsersMiddleware(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, api *tgbot.Bot, update *models.Update) {
		userID, username := updateUser(update)

		if !b.userAllowed(userID) {
			b.log.DebugContext(ctx, "User is not allowed",
				"userID", userID,
				"username", username,
				"updateID", update.ID)

			return
		}

		next(ctx, api, update)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		message := update.Message

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"chatType", message.Chat.Type,
				"messageID", message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", callbackChatID(callback),
				"userID", callback.From.ID,
				"data", callback.Data)
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func updateUser(update *models.Update) (int64, string) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.From.Username
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.From.Username
	default:
		return 0, ""
	}
}

func callbackChatID(callback *models.CallbackQuery) int64 {
	switch {
	case callback.Message.Message != nil:
		return callback.Message.Message.Chat.ID
	case callback.Message.InaccessibleMessage != nil:
		return callback.Message.InaccessibleMessage.Chat.ID
	default:
		return callback.From.ID
	}
}
