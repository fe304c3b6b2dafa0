package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	outputTokensPerLengthUnit  int64 = 2
	limitMaxOutputTokens       int64 = 2048
	incompleteMaxOutputTokens        = "max_output_tokens"
	responseStatusIncomplete         = "incomplete"
)

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

// NewOpenAISummarizer builds a summarizer and checks that the model is reachable
// with the given key.
func NewOpenAISummarizer(
	ctx context.Context,
	apiKey string,
	model string,
	opts ...option.RequestOption,
) (*OpenAISummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)

	if _, err := client.Models.Get(ctx, model); err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}

	return &OpenAISummarizer{
		client: client,
		model:  model,
	}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, req Request) ([]Candidate, error) {
	params := responses.ResponseNewParams{
		Model:        s.model,
		Instructions: openai.String(instructions(req)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(userPrompt(req)),
		},
	}
	if req.Deterministic {
		params.Temperature = openai.Float(0)
	}

	maxOutputTokens := min(int64(req.MaxLength)*outputTokensPerLengthUnit, limitMaxOutputTokens)
	for {
		params.MaxOutputTokens = openai.Int(maxOutputTokens)

		resp, err := s.client.Responses.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		if resp.Status == responseStatusIncomplete {
			if resp.IncompleteDetails.Reason == incompleteMaxOutputTokens && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return nil, fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return nil, fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}

		return []Candidate{{SummaryText: summary}}, nil
	}
}
