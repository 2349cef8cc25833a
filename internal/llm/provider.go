// Package llm writes the hybrid analyst commentary that accompanies a
// decision: technical readings and headline sentiment are summarised into a
// prompt and sent to a generative model.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/seenimoa/neuroquant/internal/logger"
)

// Provider names for configuration.
const (
	ProviderGemini = "gemini"
	ProviderStatic = "static"
)

// Common errors returned by commentators.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Brief is everything the commentary prompt is built from.
type Brief struct {
	Ticker     string
	Price      float64
	RSI        float64
	MACDSignal string
	Verdict    string
	Sentiment  float64
	Headlines  []string
}

// Commentator produces free-text commentary for a brief.
type Commentator interface {
	Name() string
	Comment(ctx context.Context, b Brief) (string, error)
}

// Static returns a fixed text; handy for tests and offline runs.
type Static string

func (s Static) Name() string { return ProviderStatic }

func (s Static) Comment(context.Context, Brief) (string, error) {
	if s == "" {
		return "", ErrEmptyResponse
	}
	return string(s), nil
}

// Apology is the text shown in place of commentary when the provider fails.
func Apology(err error) string {
	return fmt.Sprintf("Sorry, the AI analyst cannot respond right now. Error: %v", err)
}

// CommentOrApology never fails: provider errors become an apology string.
// A nil commentator yields an empty string.
func CommentOrApology(ctx context.Context, c Commentator, b Brief) string {
	if c == nil {
		return ""
	}
	text, err := c.Comment(ctx, b)
	if err != nil {
		logger.Warn(ctx, "commentary failed", "provider", c.Name(), "ticker", b.Ticker, "error", err)
		return Apology(err)
	}
	return text
}
