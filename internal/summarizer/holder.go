package summarizer

import (
	"context"
	"fmt"
	"sync"
	"txtsummarizer/internal/domain"
)

// BuildFunc constructs a summarizer for a model. It may be slow and may fail.
type BuildFunc func(ctx context.Context, modelID string) (Summarizer, error)

// Holder is a single-slot cache for the model handle. The handle is built
// on first use and kept for the life of the process.
type Holder struct {
	modelID string
	build   BuildFunc

	mu         sync.Mutex
	summarizer Summarizer
}

func NewHolder(modelID string, build BuildFunc) *Holder {
	return &Holder{
		modelID: modelID,
		build:   build,
	}
}

func (h *Holder) ModelID() string {
	return h.modelID
}

// Get returns the cached summarizer, building it once. Concurrent first
// callers wait for the same construction. Failures are not cached.
func (h *Holder) Get(ctx context.Context) (Summarizer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.summarizer != nil {
		return h.summarizer, nil
	}

	s, err := h.build(ctx, h.modelID)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", domain.ErrModelConstruction, h.modelID, err)
	}

	if s == nil {
		return nil, fmt.Errorf("%w %q: builder returned nil", domain.ErrModelConstruction, h.modelID)
	}

	h.summarizer = s

	return s, nil
}
