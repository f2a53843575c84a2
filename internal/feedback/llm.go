package feedback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = "You simulate realistic customer reactions to a product at a given price for a young entrepreneur. Respond with strict JSON only."

// CallerConfig carries the completion-service knobs the simulator exposes.
// Temperature 0 keeps repeated simulations of the same profile comparable.
type CallerConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func (c CallerConfig) withDefaults(model string) CallerConfig {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	return c
}

// LLMCaller is the single outbound dependency: prompt in, raw text out.
// The raw text is expected to be JSON but schema violations are tolerated
// downstream, not rejected here.
type LLMCaller interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
	cfg      CallerConfig
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropicoption.RequestOption) (*anthropic.Message, error)
}

func NewAnthropicCallerFromEnv(cfg CallerConfig) (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	return &AnthropicCaller{
		messages: &c.Messages,
		cfg:      cfg.withDefaults(string(anthropic.ModelClaudeSonnet4_20250514)),
	}, nil
}

func (a *AnthropicCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   int64(a.cfg.MaxTokens),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(a.cfg.Temperature),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

type GeminiCaller struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiCallerFromEnv(ctx context.Context, cfg CallerConfig) (*GeminiCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	cfg = cfg.withDefaults("gemini-2.5-flash-lite")
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	return &GeminiCaller{client: client, model: model}, nil
}

func (g *GeminiCaller) Close() { g.client.Close() }

func (g *GeminiCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// NewCallerFromEnv selects the provider by name. The Anthropic path needs
// no context; Gemini's client dials during construction.
func NewCallerFromEnv(ctx context.Context, provider string, cfg CallerConfig) (LLMCaller, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "anthropic":
		return NewAnthropicCallerFromEnv(cfg)
	case "gemini":
		return NewGeminiCallerFromEnv(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
