package summarizer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/summarizer"

	"github.com/openai/openai-go/v3/option"
)

const completedResponse = `{
	"id": "resp_1",
	"object": "response",
	"created_at": 0,
	"status": "completed",
	"model": "gpt-4.1-mini",
	"output": [{
		"type": "message",
		"id": "msg_1",
		"status": "completed",
		"role": "assistant",
		"content": [{"type": "output_text", "text": "Point one. Point two.", "annotations": []}]
	}]
}`

const incompleteResponse = `{
	"id": "resp_1",
	"object": "response",
	"created_at": 0,
	"status": "incomplete",
	"model": "gpt-4.1-mini",
	"incomplete_details": {"reason": "max_output_tokens"},
	"output": []
}`

type fakeOpenAI struct {
	mu              sync.Mutex
	responses       []string
	maxOutputTokens []int64
	temperatures    []any
}

func (f *fakeOpenAI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /models/{model}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"object":"model","created":0,"owned_by":"openai"}`, r.PathValue("model"))
	})

	mux.HandleFunc("POST /responses", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		if tokens, ok := body["max_output_tokens"].(float64); ok {
			f.maxOutputTokens = append(f.maxOutputTokens, int64(tokens))
		}
		f.temperatures = append(f.temperatures, body["temperature"])

		resp := completedResponse
		if len(f.responses) > 0 {
			resp = f.responses[0]
			f.responses = f.responses[1:]
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	})

	return mux
}

func newOpenAISummarizer(t *testing.T, fake *fakeOpenAI) *summarizer.OpenAISummarizer {
	t.Helper()

	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	s, err := summarizer.NewOpenAISummarizer(context.Background(), "sk-test", "gpt-4.1-mini",
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return s
}

func TestOpenAISummarize(t *testing.T) {
	fake := &fakeOpenAI{}
	s := newOpenAISummarizer(t, fake)

	candidates, err := s.Summarize(context.Background(), summarizer.NewRequest("Some text.", domain.FullProfile("gpt-4.1-mini")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 || candidates[0].SummaryText != "Point one. Point two." {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}

	if !slices.Equal(fake.maxOutputTokens, []int64{300}) {
		t.Fatalf("unexpected output budget: %v", fake.maxOutputTokens)
	}

	if fake.temperatures[0] != float64(0) {
		t.Fatalf("expected deterministic temperature, got %v", fake.temperatures[0])
	}
}

func TestOpenAISummarizeGrowsOutputBudget(t *testing.T) {
	fake := &fakeOpenAI{responses: []string{incompleteResponse, incompleteResponse, completedResponse}}
	s := newOpenAISummarizer(t, fake)

	candidates, err := s.Summarize(context.Background(), summarizer.NewRequest("Some text.", domain.FullProfile("gpt-4.1-mini")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}

	if want := []int64{300, 600, 1200}; !slices.Equal(fake.maxOutputTokens, want) {
		t.Fatalf("expected budgets %v, got %v", want, fake.maxOutputTokens)
	}
}

func TestOpenAISummarizeStopsAtBudgetLimit(t *testing.T) {
	fake := &fakeOpenAI{responses: slices.Repeat([]string{incompleteResponse}, 10)}
	s := newOpenAISummarizer(t, fake)

	_, err := s.Summarize(context.Background(), summarizer.NewRequest("Some text.", domain.FullProfile("gpt-4.1-mini")))
	if err == nil || !strings.Contains(err.Error(), "incomplete") {
		t.Fatalf("expected incomplete error, got %v", err)
	}

	if want := []int64{300, 600, 1200, 2048}; !slices.Equal(fake.maxOutputTokens, want) {
		t.Fatalf("expected budgets %v, got %v", want, fake.maxOutputTokens)
	}
}

func TestOpenAISummarizeEmptyOutput(t *testing.T) {
	fake := &fakeOpenAI{responses: []string{`{"id":"resp_1","object":"response","status":"completed","output":[]}`}}
	s := newOpenAISummarizer(t, fake)

	_, err := s.Summarize(context.Background(), summarizer.NewRequest("Some text.", domain.FullProfile("gpt-4.1-mini")))
	if err == nil || !strings.Contains(err.Error(), "output text is missing") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestNewOpenAISummarizerRejectsEmptyKey(t *testing.T) {
	if _, err := summarizer.NewOpenAISummarizer(context.Background(), " ", "gpt-4.1"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
