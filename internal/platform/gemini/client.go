package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/carebloom-backend/internal/platform/logger"
)

const DefaultModel = "models/gemini-2.0-flash"

type Config struct {
	APIKey   string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model    string        `yaml:"model" env:"GEMINI_MODEL"`
	Endpoint string        `yaml:"endpoint" env:"GEMINI_ENDPOINT"`
	Timeout  time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT"`
}

func (c Config) Configured() bool { return strings.TrimSpace(c.APIKey) != "" }

type SafetySetting struct {
	Category  string
	Threshold string
}

type Request struct {
	// Model overrides the client default when set.
	Model           string
	Prompt          string
	SafetySettings  []SafetySetting
	Temperature     float32
	MaxOutputTokens int32
}

type Candidate struct {
	Parts        []string
	FinishReason string
}

// Response is the provider result reduced to what callers interpret:
// candidate text parts, or the reason the prompt was withheld.
type Response struct {
	Candidates  []Candidate
	BlockReason string
}

// Generator produces text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type client struct {
	log     *logger.Logger
	models  *genai.Models
	model   string
	timeout time.Duration
}

var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")

func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		cc.HTTPOptions.BaseURL = ep
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if !strings.HasPrefix(model, "models/") && !strings.HasPrefix(model, "tunedModels/") {
		model = "models/" + model
	}
	return &client{
		log:     log.With("client", "GeminiClient", "model", model),
		models:  gc.Models,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

func (c *client) Generate(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	model := c.model
	if m := strings.TrimSpace(req.Model); m != "" {
		model = m
	}

	gcfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	for _, s := range req.SafetySettings {
		gcfg.SafetySettings = append(gcfg.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, model, genai.Text(req.Prompt), gcfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generateContent: %w", err)
	}
	out := fromAPI(resp)
	c.log.Debug("Gemini response received",
		"candidates", len(out.Candidates),
		"block_reason", out.BlockReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func fromAPI(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	if resp.PromptFeedback != nil {
		out.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := Candidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				c.Parts = append(c.Parts, p.Text)
			}
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}
