package summarizer

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHuggingFaceInferenceURL = "https://router.huggingface.co/hf-inference/models"
	DefaultHuggingFaceHubURL       = "https://huggingface.co"

	huggingFaceProbeTimeout = 30 * time.Second
	maxErrorBodyBytes       = 4096
)

type HuggingFaceConfig struct {
	Token        string
	InferenceURL string
	HubURL       string
	HTTPClient   *http.Client
}

// HuggingFaceSummarizer runs a summarization pipeline model hosted by the
// Hugging Face Inference API.
type HuggingFaceSummarizer struct {
	client   *http.Client
	token    string
	endpoint string
}

type huggingFaceParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceCandidate struct {
	SummaryText string `json:"summary_text"`
}

type huggingFaceError struct {
	Error string `json:"error"`
}

type huggingFaceModelInfo struct {
	ID          string `json:"id"`
	PipelineTag string `json:"pipeline_tag"`
}

// NewHuggingFaceSummarizer checks the model on the Hub before returning, so a
// wrong model ID or token fails here rather than on the first request.
func NewHuggingFaceSummarizer(
	ctx context.Context,
	config HuggingFaceConfig,
	model string,
) (*HuggingFaceSummarizer, error) {
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("model is empty")
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	inferenceURL := strings.TrimRight(cmp.Or(strings.TrimSpace(config.InferenceURL), DefaultHuggingFaceInferenceURL), "/")
	hubURL := strings.TrimRight(cmp.Or(strings.TrimSpace(config.HubURL), DefaultHuggingFaceHubURL), "/")

	s := &HuggingFaceSummarizer{
		client:   client,
		token:    strings.TrimSpace(config.Token),
		endpoint: inferenceURL + "/" + model,
	}

	if err := s.probe(ctx, hubURL+"/api/models/"+model); err != nil {
		return nil, fmt.Errorf("probe model: %w", err)
	}

	return s, nil
}

func (s *HuggingFaceSummarizer) probe(ctx context.Context, modelURL string) error {
	ctx, cancel := context.WithTimeout(ctx, huggingFaceProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var info huggingFaceModelInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode model info: %w", err)
	}

	if info.PipelineTag != "" && info.PipelineTag != "summarization" {
		return fmt.Errorf("model %q is a %q model, not summarization", info.ID, info.PipelineTag)
	}

	return nil
}

func (s *HuggingFaceSummarizer) Summarize(ctx context.Context, req Request) ([]Candidate, error) {
	body, err := json.Marshal(huggingFaceRequest{
		Inputs: req.Text,
		Parameters: huggingFaceParameters{
			MaxLength: req.MaxLength,
			MinLength: req.MinLength,
			DoSample:  !req.Deterministic,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-wait-for-model", "true")
	s.authorize(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var raw []huggingFaceCandidate
	if err = json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, c := range raw {
		candidates = append(candidates, Candidate{SummaryText: c.SummaryText})
	}

	return candidates, nil
}

func (s *HuggingFaceSummarizer) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var apiErr huggingFaceError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error)
	}

	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
