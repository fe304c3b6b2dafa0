package summarizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"txtsummarizer/internal/domain"
)

type echoSummarizer struct{}

func (echoSummarizer) Summarize(_ context.Context, req Request) ([]Candidate, error) {
	return []Candidate{{SummaryText: req.Text}}, nil
}

func TestHolderBuildsOnceUnderConcurrency(t *testing.T) {
	const callers = 32

	var builds atomic.Int32
	holder := NewHolder("model", func(_ context.Context, modelID string) (Summarizer, error) {
		if modelID != "model" {
			t.Errorf("unexpected model ID: %q", modelID)
		}
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)

		return &echoSummarizer{}, nil
	})

	start := make(chan struct{})
	results := make([]Summarizer, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			s, err := holder.Get(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = s
		}()
	}

	if holder.ModelID() != "model" {
		t.Fatalf("unexpected model ID: %q", holder.ModelID())
	}

	close(start)
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Fatalf("expected exactly one construction, got %d", got)
	}

	for i, s := range results {
		if s == nil || s != results[0] {
			t.Fatalf("caller %d observed a different handle", i)
		}
	}
}

func TestHolderDoesNotCacheFailures(t *testing.T) {
	var builds int
	buildErr := errors.New("unauthorized")

	holder := NewHolder("model", func(context.Context, string) (Summarizer, error) {
		builds++
		if builds == 1 {
			return nil, buildErr
		}

		return echoSummarizer{}, nil
	})

	_, err := holder.Get(context.Background())
	if !errors.Is(err, domain.ErrModelConstruction) || !errors.Is(err, buildErr) {
		t.Fatalf("expected construction error wrapping cause, got %v", err)
	}

	if _, err = holder.Get(context.Background()); err != nil {
		t.Fatalf("expected second attempt to succeed, got %v", err)
	}

	if _, err = holder.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if builds != 2 {
		t.Fatalf("expected two constructions, got %d", builds)
	}
}

func TestHolderRejectsNilSummarizer(t *testing.T) {
	holder := NewHolder("model", func(context.Context, string) (Summarizer, error) {
		return nil, nil
	})

	if _, err := holder.Get(context.Background()); !errors.Is(err, domain.ErrModelConstruction) {
		t.Fatalf("expected construction error, got %v", err)
	}
}
