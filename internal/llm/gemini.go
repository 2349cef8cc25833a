package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini implements Commentator with the Google Gen AI SDK.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// GeminiOption configures the Gemini commentator.
type GeminiOption func(*geminiOptions)

type geminiOptions struct {
	model       string
	temperature float32
	timeout     time.Duration
	baseURL     string
}

// WithGeminiModel sets the model name.
func WithGeminiModel(model string) GeminiOption {
	return func(o *geminiOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GeminiOption {
	return func(o *geminiOptions) { o.temperature = float32(t) }
}

// WithTimeout bounds each Comment call.
func WithTimeout(d time.Duration) GeminiOption {
	return func(o *geminiOptions) { o.timeout = d }
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) GeminiOption {
	return func(o *geminiOptions) { o.baseURL = u }
}

// NewGemini creates a Gemini commentator.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	o := geminiOptions{
		model:       DefaultGeminiModel,
		temperature: 0.4,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{
		client:      client,
		model:       o.model,
		temperature: o.temperature,
		timeout:     o.timeout,
	}, nil
}

func (g *Gemini) Name() string  { return ProviderGemini }
func (g *Gemini) Model() string { return g.model }

// Comment sends the hybrid prompt and returns the model's text.
func (g *Gemini) Comment(ctx context.Context, b Brief) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(BuildPrompt(b))},
		},
	}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderDown, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
