package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"txtsummarizer/internal/domain"
)

// Request describes a single summarization call.
type Request struct {
	// Text contains the decoded upload.
	Text string
	// MaxLength and MinLength bound the summary length in model tokens.
	MaxLength int
	MinLength int
	// Deterministic disables sampling.
	Deterministic bool
}

func NewRequest(text string, profile domain.Profile) Request {
	return Request{
		Text:          text,
		MaxLength:     profile.MaxLength,
		MinLength:     profile.MinLength,
		Deterministic: profile.Deterministic,
	}
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("input is empty")
	}

	if r.MinLength < 0 || r.MaxLength <= 0 {
		return fmt.Errorf("length bounds must be positive (min = %d, max = %d)", r.MinLength, r.MaxLength)
	}

	if r.MinLength > r.MaxLength {
		return fmt.Errorf("min length %d exceeds max length %d", r.MinLength, r.MaxLength)
	}

	return nil
}

type Candidate struct {
	SummaryText string
}

// Summarizer returns one or more candidate summaries for a request.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) ([]Candidate, error)
}

// First runs s and keeps only the first candidate. Every failure is
// reported as domain.ErrInference.
func First(ctx context.Context, s Summarizer, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	candidates, err := s.Summarize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: model returned no candidates", domain.ErrInference)
	}

	return candidates[0].SummaryText, nil
}
