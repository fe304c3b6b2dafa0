package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/session"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type sentRequest struct {
	method string
	fields map[string]string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []sentRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	fields := map[string]string{}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for key, values := range r.MultipartForm.Value {
			fields[key] = strings.Join(values, ",")
		}
		for key := range r.MultipartForm.File {
			fields[key] = "<file>"
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, sentRequest{method: method, fields: fields})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage", "sendDocument":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (f *fakeAPI) sent(method string) []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentRequest
	for _, req := range f.requests {
		if req.method == method {
			out = append(out, req)
		}
	}

	return out
}

type stubSummaries struct {
	mu       sync.Mutex
	selected []domain.FileRef
	outcome  session.Outcome
	record   *domain.SummaryRecord
	profile  domain.Profile
	cancel   bool
	triggers int
}

func (s *stubSummaries) Select(_ context.Context, _ int64, ref domain.FileRef) (session.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = append(s.selected, ref)
	if ref.MimeType != "text/plain" {
		return session.Outcome{State: domain.StateRejected, Message: session.RejectedMessage}, nil
	}

	return session.Outcome{State: domain.StateReady, Message: session.AcceptedMessage}, nil
}

func (s *stubSummaries) Trigger(_ context.Context, _ int64, started func(domain.FileRef)) (session.Outcome, error) {
	s.mu.Lock()
	s.triggers++
	s.mu.Unlock()

	if started != nil && (s.outcome.State == domain.StateDone || s.outcome.State == domain.StateFailed) {
		started(domain.FileRef{FileID: "file-1", FileName: "notes.txt", MimeType: "text/plain"})
	}

	return s.outcome, nil
}

func (s *stubSummaries) triggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.triggers
}

func (s *stubSummaries) Cancel(int64) bool {
	return s.cancel
}

func (s *stubSummaries) LastSummary(context.Context, int64) (*domain.SummaryRecord, error) {
	return s.record, nil
}

func (s *stubSummaries) Profile() domain.Profile {
	return s.profile
}

func newTestBot(t *testing.T, summaries Summaries, allowedUsers []int64) (*Bot, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	b, err := New("123:abc", summaries, allowedUsers, log,
		tgbot.WithServerURL(srv.URL),
		tgbot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(b.Stop)

	return b, api
}

func documentUpdate(userID int64, mimeType string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate},
			Document: &models.Document{
				FileID:   "file-1",
				FileName: "notes.txt",
				MimeType: mimeType,
				FileSize: 11,
			},
		},
	}
}

func TestUserAllowed(t *testing.T) {
	open := &Bot{}
	if !open.userAllowed(7) {
		t.Fatalf("expected everyone to be allowed without a list")
	}

	restricted := &Bot{allowedUsers: []int64{1, 2}}
	if !restricted.userAllowed(2) {
		t.Fatalf("expected listed user to be allowed")
	}
	if restricted.userAllowed(3) {
		t.Fatalf("expected unlisted user to be rejected")
	}
}

func TestHandleDocumentAccepted(t *testing.T) {
	summaries := &stubSummaries{profile: domain.FullProfile("m")}
	b, api := newTestBot(t, summaries, nil)

	b.handleUpdate(context.Background(), nil, documentUpdate(1, "text/plain"))

	if len(summaries.selected) != 1 || summaries.selected[0].FileID != "file-1" {
		t.Fatalf("unexpected selections: %+v", summaries.selected)
	}

	sent := api.sent("sendMessage")
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	if !strings.Contains(sent[0].fields["text"], "Text file uploaded successfully") {
		t.Fatalf("unexpected text: %q", sent[0].fields["text"])
	}
	if !strings.Contains(sent[0].fields["reply_markup"], summarizeCallbackData) {
		t.Fatalf("expected summarize keyboard, got %q", sent[0].fields["reply_markup"])
	}
}

func TestHandleDocumentRejected(t *testing.T) {
	summaries := &stubSummaries{profile: domain.FullProfile("m")}
	b, api := newTestBot(t, summaries, nil)

	b.handleUpdate(context.Background(), nil, documentUpdate(1, "application/pdf"))

	sent := api.sent("sendMessage")
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	if !strings.Contains(sent[0].fields["text"], "Please upload only \\.txt files") {
		t.Fatalf("unexpected text: %q", sent[0].fields["text"])
	}
	if sent[0].fields["reply_markup"] != "" {
		t.Fatalf("expected no keyboard, got %q", sent[0].fields["reply_markup"])
	}
}

func TestAllowedUsersMiddlewareDropsStrangers(t *testing.T) {
	summaries := &stubSummaries{profile: domain.FullProfile("m")}
	b, api := newTestBot(t, summaries, []int64{1})

	handler := b.allowedUsersMiddleware(b.handleUpdate)
	handler(context.Background(), nil, documentUpdate(2, "text/plain"))

	if len(summaries.selected) != 0 {
		t.Fatalf("expected stranger to be ignored, got %+v", summaries.selected)
	}
	if sent := api.sent("sendMessage"); len(sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sent))
	}
}

func TestSummaryJobSendsExport(t *testing.T) {
	summaries := &stubSummaries{
		profile: domain.LightProfile("m"),
		outcome: session.Outcome{
			State:    domain.StateDone,
			Preview:  "Original text.",
			Document: []string{"Point one."},
			Export:   "• Point one.\n\n",
		},
	}
	b, api := newTestBot(t, summaries, nil)

	if err := b.startSummary(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.jobs.Wait()

	messages := api.sent("sendMessage")
	if len(messages) != 2 {
		t.Fatalf("expected progress and summary messages, got %d", len(messages))
	}
	if !strings.Contains(messages[0].fields["text"], "Summarizing notes\\.txt") ||
		!strings.Contains(messages[0].fields["reply_markup"], cancelCallbackData) {
		t.Fatalf("unexpected progress message: %+v", messages[0])
	}
	if !strings.Contains(messages[1].fields["text"], "Key Points Summary") {
		t.Fatalf("unexpected summary text: %q", messages[1].fields["text"])
	}

	documents := api.sent("sendDocument")
	if len(documents) != 1 || documents[0].fields["document"] != "<file>" {
		t.Fatalf("expected exported summary document, got %+v", documents)
	}
}

func TestCancelCommand(t *testing.T) {
	summaries := &stubSummaries{profile: domain.FullProfile("m")}
	b, api := newTestBot(t, summaries, nil)

	if err := b.handleCancelCommand(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := api.sent("sendMessage")
	if len(sent) != 1 || !strings.Contains(sent[0].fields["text"], "Nothing to cancel") {
		t.Fatalf("unexpected messages: %+v", sent)
	}
}

func TestCallbackChatID(t *testing.T) {
	callback := &models.CallbackQuery{
		From: models.User{ID: 5},
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{Chat: models.Chat{ID: 42}},
		},
	}
	if got := callbackChatID(callback); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	callback.Message = models.MaybeInaccessibleMessage{}
	if got := callbackChatID(callback); got != 5 {
		t.Fatalf("expected fallback to user, got %d", got)
	}
}

func TestSummaryJobWithoutFileSkipsProgress(t *testing.T) {
	summaries := &stubSummaries{
		profile: domain.FullProfile("m"),
		outcome: session.Outcome{State: domain.StateIdle, Message: session.NoFileMessage},
	}
	b, api := newTestBot(t, summaries, nil)

	if err := b.startSummary(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.jobs.Wait()

	messages := api.sent("sendMessage")
	if len(messages) != 1 {
		t.Fatalf("expected only the outcome message, got %d", len(messages))
	}
	if strings.Contains(messages[0].fields["text"], "Summarizing") {
		t.Fatalf("expected no progress message, got %q", messages[0].fields["text"])
	}
	if !strings.Contains(messages[0].fields["text"], "Upload a \\.txt file first") {
		t.Fatalf("unexpected text: %q", messages[0].fields["text"])
	}
}

func TestStartSummaryAfterStop(t *testing.T) {
	summaries := &stubSummaries{profile: domain.FullProfile("m")}
	b, api := newTestBot(t, summaries, nil)

	b.Stop()

	if err := b.startSummary(context.Background(), 42); !errors.Is(err, errBotStopping) {
		t.Fatalf("expected stopping error, got %v", err)
	}
	b.jobs.Wait()

	if summaries.triggerCount() != 0 {
		t.Fatalf("expected no summary after stop, got %d", summaries.triggerCount())
	}
	if sent := api.sent("sendMessage"); len(sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sent))
	}
}
