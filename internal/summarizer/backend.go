package summarizer

import (
	"context"
	"fmt"
	"txtsummarizer/internal/domain"

	"google.golang.org/genai"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendGemini      = "gemini"
)

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var defaultModelIDs = map[string]map[string]string{
	BackendHuggingFace: {
		domain.ProfileFull:  "facebook/bart-large-cnn",
		domain.ProfileLight: "sshleifer/distilbart-cnn-12-6",
	},
	BackendOpenAI: {
		domain.ProfileFull:  "gpt-4.1",
		domain.ProfileLight: "gpt-4.1-mini",
	},
	BackendGemini: {
		domain.ProfileFull:  "gemini-2.5-pro",
		domain.ProfileLight: "gemini-2.5-flash",
	},
}

// Credentials carries what each backend needs to reach its API.
type Credentials struct {
	HuggingFace  HuggingFaceConfig
	OpenAIAPIKey string
	GeminiAPIKey string
}

func DefaultModelID(backend, profile string) (string, error) {
	models, ok := defaultModelIDs[backend]
	if !ok {
		return "", fmt.Errorf("unknown backend %q", backend)
	}

	modelID, ok := models[profile]
	if !ok {
		return "", fmt.Errorf("unknown profile %q", profile)
	}

	return modelID, nil
}

// NewBuildFunc returns the constructor used by Holder for the chosen backend.
func NewBuildFunc(backend string, creds Credentials) (BuildFunc, error) {
	switch backend {
	case BackendHuggingFace:
		return func(ctx context.Context, modelID string) (Summarizer, error) {
			return NewHuggingFaceSummarizer(ctx, creds.HuggingFace, modelID)
		}, nil
	case BackendOpenAI:
		return func(ctx context.Context, modelID string) (Summarizer, error) {
			return NewOpenAISummarizer(ctx, creds.OpenAIAPIKey, modelID)
		}, nil
	case BackendGemini:
		return func(ctx context.Context, modelID string) (Summarizer, error) {
			return NewGeminiSummarizer(ctx, creds.GeminiAPIKey, modelID, genai.HTTPOptions{})
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
