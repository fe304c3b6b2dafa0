package summarizer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/summarizer"
)

type stubSummarizer struct {
	candidates []summarizer.Candidate
	err        error
	calls      int
}

func (s *stubSummarizer) Summarize(context.Context, summarizer.Request) ([]summarizer.Candidate, error) {
	s.calls++
	return s.candidates, s.err
}

func TestFirstKeepsOnlyFirstCandidate(t *testing.T) {
	stub := &stubSummarizer{candidates: []summarizer.Candidate{
		{SummaryText: "first"},
		{SummaryText: "second"},
	}}

	got, err := summarizer.First(context.Background(), stub, summarizer.NewRequest("text", domain.FullProfile("m")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "first" {
		t.Fatalf("expected first candidate, got %q", got)
	}
}

func TestFirstWrapsFailures(t *testing.T) {
	cause := errors.New("out of memory")
	stub := &stubSummarizer{err: cause}

	_, err := summarizer.First(context.Background(), stub, summarizer.NewRequest("text", domain.LightProfile("m")))
	if !errors.Is(err, domain.ErrInference) || !errors.Is(err, cause) {
		t.Fatalf("expected inference error wrapping cause, got %v", err)
	}
}

func TestFirstRejectsEmptyCandidates(t *testing.T) {
	_, err := summarizer.First(context.Background(), &stubSummarizer{}, summarizer.NewRequest("text", domain.FullProfile("m")))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected inference error, got %v", err)
	}
}

func TestFirstValidatesBeforeCalling(t *testing.T) {
	stub := &stubSummarizer{candidates: []summarizer.Candidate{{SummaryText: "x"}}}

	_, err := summarizer.First(context.Background(), stub, summarizer.NewRequest("   ", domain.FullProfile("m")))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected inference error, got %v", err)
	}

	if stub.calls != 0 {
		t.Fatalf("expected no model call for empty text, got %d", stub.calls)
	}
}

func TestNewRequestUsesProfileBounds(t *testing.T) {
	full := summarizer.NewRequest("text", domain.FullProfile("m"))
	if full.MaxLength != 150 || full.MinLength != 30 || !full.Deterministic {
		t.Fatalf("unexpected full request: %+v", full)
	}

	light := summarizer.NewRequest("text", domain.LightProfile("m"))
	if light.MaxLength != 130 || light.MinLength != 30 || !light.Deterministic {
		t.Fatalf("unexpected light request: %+v", light)
	}
}

func TestRequestValidateBounds(t *testing.T) {
	req := summarizer.Request{Text: "text", MaxLength: 10, MinLength: 20}

	err := req.Validate()
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected bounds error, got %v", err)
	}
}

func TestDefaultModelID(t *testing.T) {
	got, err := summarizer.DefaultModelID(summarizer.BackendHuggingFace, domain.ProfileLight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "sshleifer/distilbart-cnn-12-6" {
		t.Fatalf("unexpected model ID: %q", got)
	}

	if _, err = summarizer.DefaultModelID("unknown", domain.ProfileFull); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewBuildFuncUnknownBackend(t *testing.T) {
	if _, err := summarizer.NewBuildFunc("unknown", summarizer.Credentials{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
