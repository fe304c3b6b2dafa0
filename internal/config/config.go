package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/summarizer"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token          string        `env:"TOKEN,required,notEmpty"`
	AllowedUsers   []int64       `env:"ALLOWED_USERS"`
	DBPath         string        `env:"DB_PATH"           envDefault:"db.sqlite"`
	Profile        string        `env:"PROFILE"           envDefault:"full"`
	Backend        string        `env:"BACKEND"           envDefault:"huggingface"`
	ModelID        string        `env:"MODEL_ID"`
	SummaryTimeout time.Duration `env:"SUMMARY_TIMEOUT"   envDefault:"0s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES"  envDefault:"1048576"`
	HistoryTTL     time.Duration `env:"HISTORY_RETENTION" envDefault:"720h"`
	LogLevel       slog.Level    `env:"LOG_LEVEL"         envDefault:"INFO"`

	HuggingFaceToken        string `env:"HF_TOKEN"`
	HuggingFaceInferenceURL string `env:"HF_INFERENCE_URL"`
	HuggingFaceHubURL       string `env:"HF_HUB_URL"`
	OpenAIAPIKey            string `env:"OPENAI_API_KEY"`
	GeminiAPIKey            string `env:"GEMINI_API_KEY"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromMap is LoadConfig without touching the process environment.
func LoadFromMap(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.Token = strings.TrimSpace(c.Token)
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.ModelID = strings.TrimSpace(c.ModelID)

	var errs []error

	if c.Profile != domain.ProfileFull && c.Profile != domain.ProfileLight {
		errs = append(errs, fmt.Errorf("PROFILE must be %q or %q, got %q", domain.ProfileFull, domain.ProfileLight, c.Profile))
	}

	switch c.Backend {
	case summarizer.BackendHuggingFace:
	case summarizer.BackendOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai backend"))
		}
	case summarizer.BackendGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("BACKEND must be one of %q, %q, %q, got %q",
			summarizer.BackendHuggingFace, summarizer.BackendOpenAI, summarizer.BackendGemini, c.Backend))
	}

	if c.SummaryTimeout < 0 {
		errs = append(errs, errors.New("SUMMARY_TIMEOUT must not be negative"))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	if c.HistoryTTL <= 0 {
		errs = append(errs, errors.New("HISTORY_RETENTION must be positive"))
	}

	return errors.Join(errs...)
}

// SummaryProfile resolves the profile, falling back to the backend's default model.
func (c *Config) SummaryProfile() (domain.Profile, error) {
	modelID := c.ModelID
	if modelID == "" {
		var err error
		if modelID, err = summarizer.DefaultModelID(c.Backend, c.Profile); err != nil {
			return domain.Profile{}, err
		}
	}

	return domain.ProfileByName(c.Profile, modelID)
}

func (c *Config) Credentials() summarizer.Credentials {
	return summarizer.Credentials{
		HuggingFace: summarizer.HuggingFaceConfig{
			Token:        c.HuggingFaceToken,
			InferenceURL: c.HuggingFaceInferenceURL,
			HubURL:       c.HuggingFaceHubURL,
		},
		OpenAIAPIKey: c.OpenAIAPIKey,
		GeminiAPIKey: c.GeminiAPIKey,
	}
}
