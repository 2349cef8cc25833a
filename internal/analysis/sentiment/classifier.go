// Package sentiment scores news headlines and folds them into a single
// sentiment reading with an outlier veto.
package sentiment

import (
	"context"
	"strings"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// Prediction is a classifier's verdict on one piece of text.
type Prediction struct {
	Label      models.SentimentLabel
	Confidence float64 // 0..1
}

// Score converts a prediction into a signed score: +confidence for
// Positive, -confidence for Negative, 0 otherwise.
func (p Prediction) Score() float64 {
	switch p.Label {
	case models.SentimentPositive:
		return p.Confidence
	case models.SentimentNegative:
		return -p.Confidence
	default:
		return 0
	}
}

// Classifier labels a headline. Implementations are shared across requests
// and must be safe for concurrent use.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Prediction, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (Prediction, error)

func (f ClassifierFunc) Name() string { return "func" }

func (f ClassifierFunc) Classify(ctx context.Context, text string) (Prediction, error) {
	return f(ctx, text)
}

// ParseLabel maps classifier label names onto the three sentiment labels.
// Unknown names map to Neutral.
func ParseLabel(s string) models.SentimentLabel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos", "bullish":
		return models.SentimentPositive
	case "negative", "neg", "bearish":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
