package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiSummarizer generates summaries with the Gemini API. Every returned
// candidate with text is kept, in order.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// Gemini 2.5 Pro cannot turn thinking off; this is its smallest budget.
const geminiMinProThinkingBudget int32 = 128

func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	model string,
	httpOptions genai.HTTPOptions,
) (*GeminiSummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	if _, err = client.Models.Get(ctx, model, nil); err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}

	return &GeminiSummarizer{
		client: client,
		model:  model,
	}, nil
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, req Request) ([]Candidate, error) {
	maxOutputTokens := int32(min(int64(req.MaxLength)*outputTokensPerLengthUnit, limitMaxOutputTokens))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions(req), genai.RoleUser),
		MaxOutputTokens:   maxOutputTokens,
	}

	// Thinking tokens count against MaxOutputTokens.
	if budget, ok := thinkingBudget(s.model); ok {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(budget)}
		config.MaxOutputTokens = maxOutputTokens + budget
	}
	if req.Deterministic {
		config.Temperature = genai.Ptr[float32](0)
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(userPrompt(req)), config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	var candidates []Candidate
	var finishReasons []string
	for _, c := range result.Candidates {
		if c == nil {
			continue
		}
		finishReasons = append(finishReasons, string(c.FinishReason))

		if c.Content == nil {
			continue
		}

		var text strings.Builder
		for _, part := range c.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}

		if summary := strings.TrimSpace(text.String()); summary != "" {
			candidates = append(candidates, Candidate{SummaryText: summary})
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini (finishReasons = %s)", strings.Join(finishReasons, ","))
	}

	return candidates, nil
}

// thinkingBudget returns the smallest thinking budget for models that think
// by default. Older models take no thinking config at all.
func thinkingBudget(model string) (int32, bool) {
	name := strings.TrimPrefix(model, "models/")

	switch {
	case strings.HasPrefix(name, "gemini-2.5-pro"):
		return geminiMinProThinkingBudget, true
	case strings.HasPrefix(name, "gemini-2.5-flash"):
		return 0, true
	default:
		return 0, false
	}
}
