// Package session drives the per-chat upload and summarize flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"txtsummarizer/internal/bullets"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/summarizer"
	"txtsummarizer/internal/upload"
)

const (
	AcceptedMessage = "Text file uploaded successfully!"
	RejectedMessage = "Please upload only .txt files"
	NoFileMessage   = "Upload a .txt file first."
	BusyMessage     = "A summary is already being generated."
	failedMessage   = "An error occurred: %s"
)

var errCancelled = errors.New("summarization is cancelled")

type Store interface {
	GetSession(ctx context.Context, chatID int64) (domain.Session, error)
	SaveSession(ctx context.Context, session domain.Session) error
	ResetRunningSessions(ctx context.Context) (int64, error)
	AddSummary(ctx context.Context, record domain.SummaryRecord) error
	LastSummary(ctx context.Context, chatID int64) (*domain.SummaryRecord, error)
}

// Fetcher downloads the bytes of a selected file.
type Fetcher interface {
	Fetch(ctx context.Context, ref domain.FileRef) (upload.File, error)
}

// Outcome is what the chat should be shown after an action.
type Outcome struct {
	State    domain.State
	Message  string
	FileName string
	Preview  string
	Document bullets.Document
	// Export is the plain-text download, set only when the profile exports.
	Export string
	// Err is the per-request cause behind Rejected and Failed outcomes.
	Err error
}

type Orchestrator struct {
	store      Store
	fetcher    Fetcher
	summarizer summarizer.Summarizer
	profile    domain.Profile
	timeout    time.Duration
	now        func() time.Time
	log        *slog.Logger

	mu       sync.Mutex
	inflight map[int64]context.CancelFunc
	chats    map[int64]*sync.Mutex
}

type Option func(*Orchestrator)

// WithTimeout bounds each model call. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(
	store Store,
	fetcher Fetcher,
	s summarizer.Summarizer,
	profile domain.Profile,
	log *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		fetcher:    fetcher,
		summarizer: s,
		profile:    profile,
		now:        time.Now,
		log:        log,
		inflight:   make(map[int64]context.CancelFunc),
		chats:      make(map[int64]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *Orchestrator) Profile() domain.Profile {
	return o.profile
}

// Recover moves sessions interrupted by a restart from Running back to Ready.
func (o *Orchestrator) Recover(ctx context.Context) error {
	n, err := o.store.ResetRunningSessions(ctx)
	if err != nil {
		return fmt.Errorf("reset running sessions: %w", err)
	}

	if n > 0 {
		o.log.InfoContext(ctx, "Interrupted sessions are reset",
			"sessionCount", n)
	}

	return nil
}

// Select records a newly chosen file. The returned error is reserved for
// storage failures; a rejected upload is reported through the Outcome.
func (o *Orchestrator) Select(ctx context.Context, chatID int64, ref domain.FileRef) (Outcome, error) {
	unlock := o.lockChat(chatID)
	defer unlock()

	if o.isRunning(chatID) {
		return Outcome{State: domain.StateRunning, Message: BusyMessage}, nil
	}

	session := domain.Session{
		ChatID:    chatID,
		UpdatedAt: o.now(),
	}

	if err := upload.Validate(ref.MimeType); err != nil {
		session.State = domain.StateRejected
		if saveErr := o.store.SaveSession(ctx, session); saveErr != nil {
			return Outcome{}, fmt.Errorf("save session: %w", saveErr)
		}

		return Outcome{
			State:    domain.StateRejected,
			Message:  RejectedMessage,
			FileName: ref.FileName,
			Err:      err,
		}, nil
	}

	session.State = domain.StateReady
	session.File = &ref
	if err := o.store.SaveSession(ctx, session); err != nil {
		return Outcome{}, fmt.Errorf("save session: %w", err)
	}

	return Outcome{
		State:    domain.StateReady,
		Message:  AcceptedMessage,
		FileName: ref.FileName,
	}, nil
}

// Trigger summarizes the selected file. It blocks until the model returns,
// fails, or Cancel is called for the chat. started, when not nil, is called
// once the request is accepted and the session is Running.
func (o *Orchestrator) Trigger(ctx context.Context, chatID int64, started func(domain.FileRef)) (Outcome, error) {
	session, ctx, release, outcome, err := o.start(ctx, chatID)
	if err != nil || release == nil {
		return outcome, err
	}
	defer release()

	ref := *session.File
	if started != nil {
		started(ref)
	}

	outcome = o.run(ctx, ref)

	// The request context may be cancelled by now; the result must still be stored.
	storeCtx := context.WithoutCancel(ctx)
	session.UpdatedAt = o.now()

	if outcome.State == domain.StateFailed {
		session.State = domain.StateReady
		session.LastError = outcome.Err.Error()

		o.log.WarnContext(ctx, "Failed to summarize file",
			"error", outcome.Err,
			"chatID", chatID,
			"fileName", ref.FileName,
			"modelID", o.profile.ModelID)
	} else {
		session.State = domain.StateDone
		session.LastError = ""

		if err = o.store.AddSummary(storeCtx, domain.SummaryRecord{
			ChatID:    chatID,
			FileName:  ref.FileName,
			ModelID:   o.profile.ModelID,
			Bullets:   outcome.Document,
			CreatedAt: session.UpdatedAt,
		}); err != nil {
			o.log.ErrorContext(ctx, "Failed to add summary to history",
				"error", err,
				"chatID", chatID)
		}

		o.log.InfoContext(ctx, "File is summarized",
			"chatID", chatID,
			"fileName", ref.FileName,
			"bulletCount", len(outcome.Document),
			"modelID", o.profile.ModelID)
	}

	if err = o.store.SaveSession(storeCtx, session); err != nil {
		return outcome, fmt.Errorf("save session: %w", err)
	}

	return outcome, nil
}

// start moves the chat to Running. A nil release means the request was not
// accepted and outcome says why.
func (o *Orchestrator) start(
	ctx context.Context,
	chatID int64,
) (domain.Session, context.Context, func(), Outcome, error) {
	unlock := o.lockChat(chatID)
	defer unlock()

	runCtx, release, ok := o.acquire(ctx, chatID)
	if !ok {
		return domain.Session{}, ctx, nil, Outcome{State: domain.StateRunning, Message: BusyMessage}, nil
	}

	session, err := o.store.GetSession(runCtx, chatID)
	if err != nil {
		release()
		return domain.Session{}, ctx, nil, Outcome{}, fmt.Errorf("get session: %w", err)
	}

	if !session.State.HasFile() || session.File == nil {
		release()
		return domain.Session{}, ctx, nil, Outcome{State: session.State, Message: NoFileMessage}, nil
	}

	session.State = domain.StateRunning
	session.UpdatedAt = o.now()
	if err = o.store.SaveSession(runCtx, session); err != nil {
		release()
		return domain.Session{}, ctx, nil, Outcome{}, fmt.Errorf("save session: %w", err)
	}

	return session, runCtx, release, Outcome{}, nil
}

// Cancel stops the running summarization of a chat, if any.
func (o *Orchestrator) Cancel(chatID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	cancel, ok := o.inflight[chatID]
	if ok {
		cancel()
	}

	return ok
}

func (o *Orchestrator) LastSummary(ctx context.Context, chatID int64) (*domain.SummaryRecord, error) {
	return o.store.LastSummary(ctx, chatID)
}

func (o *Orchestrator) run(ctx context.Context, ref domain.FileRef) Outcome {
	file, err := o.fetcher.Fetch(ctx, ref)
	if err != nil {
		return o.failed(ctx, ref, fmt.Errorf("fetch file: %w", err))
	}

	text, err := upload.Decode(file.Bytes)
	if err != nil {
		return o.failed(ctx, ref, err)
	}

	preview := upload.Preview(text)

	summaryCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		summaryCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	summary, err := summarizer.First(summaryCtx, o.summarizer, summarizer.NewRequest(text, o.profile))
	if err != nil {
		outcome := o.failed(ctx, ref, err)
		outcome.Preview = preview

		return outcome
	}

	doc := bullets.Format(summary)

	outcome := Outcome{
		State:    domain.StateDone,
		FileName: ref.FileName,
		Preview:  preview,
		Document: doc,
	}
	if o.profile.ExportSummary {
		outcome.Export = doc.Blob()
	}

	return outcome
}

func (o *Orchestrator) failed(ctx context.Context, ref domain.FileRef, err error) Outcome {
	if errors.Is(context.Cause(ctx), errCancelled) {
		err = fmt.Errorf("%w: %w", errCancelled, err)
	}

	return Outcome{
		State:    domain.StateFailed,
		Message:  fmt.Sprintf(failedMessage, err.Error()),
		FileName: ref.FileName,
		Err:      err,
	}
}

func (o *Orchestrator) acquire(ctx context.Context, chatID int64) (context.Context, func(), bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.inflight[chatID]; ok {
		return ctx, func() {}, false
	}

	ctx, cancel := context.WithCancelCause(ctx)
	o.inflight[chatID] = func() { cancel(errCancelled) }

	return ctx, func() {
		o.mu.Lock()
		delete(o.inflight, chatID)
		o.mu.Unlock()

		cancel(nil)
	}, true
}

// lockChat serializes the state changes of one chat. It is not held while
// the model runs.
func (o *Orchestrator) lockChat(chatID int64) func() {
	o.mu.Lock()
	lock, ok := o.chats[chatID]
	if !ok {
		lock = &sync.Mutex{}
		o.chats[chatID] = lock
	}
	o.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func (o *Orchestrator) isRunning(chatID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, ok := o.inflight[chatID]
	return ok
}
