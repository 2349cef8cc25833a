package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/neuroquant/internal/analysis/sentiment"
	"github.com/seenimoa/neuroquant/internal/config"
	"github.com/seenimoa/neuroquant/internal/forecast"
	"github.com/seenimoa/neuroquant/internal/llm"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
)

// Handles are the long-lived collaborators shared read-only by every
// request. Commentator is optional.
type Handles struct {
	Model       forecast.Model
	Scaler      forecast.Scaler
	Classifier  sentiment.Classifier
	Commentator llm.Commentator
}

// Validate reports ErrCollaboratorUnavailable when a required handle is missing.
func (h *Handles) Validate() error {
	switch {
	case h == nil:
		return fmt.Errorf("%w: no handles loaded", models.ErrCollaboratorUnavailable)
	case h.Model == nil:
		return fmt.Errorf("%w: forecast model", models.ErrCollaboratorUnavailable)
	case h.Classifier == nil:
		return fmt.Errorf("%w: sentiment classifier", models.ErrCollaboratorUnavailable)
	}
	return nil
}

// LoadHandles builds the model, scaler, classifier and commentator named
// by cfg. A commentator that cannot be built is logged and left nil.
func LoadHandles(ctx context.Context, cfg *config.Config) (*Handles, error) {
	model, err := loadModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	var scaler forecast.Scaler = forecast.IdentityScaler{}
	if cfg.Model.ScalerPath != "" {
		mm, err := forecast.LoadMinMax(cfg.Model.ScalerPath)
		if err != nil {
			return nil, fmt.Errorf("%w: scaler: %v", models.ErrCollaboratorUnavailable, err)
		}
		scaler = mm
	}

	classifier, err := loadClassifier(cfg.Sentiment)
	if err != nil {
		return nil, err
	}

	h := &Handles{Model: model, Scaler: scaler, Classifier: classifier}
	if cfg.LLM.Enabled {
		g, err := llm.NewGemini(ctx, cfg.LLM.GeminiKey,
			llm.WithGeminiModel(cfg.LLM.Model),
			llm.WithTemperature(cfg.LLM.Temperature),
			llm.WithTimeout(seconds(cfg.LLM.TimeoutSec)))
		if err != nil {
			logger.Warn(ctx, "commentary disabled", "error", err)
		} else {
			h.Commentator = g
		}
	}

	logger.Info(ctx, "handles loaded",
		"model", model.Name(),
		"autoregressive", model.Autoregressive(),
		"classifier", classifier.Name(),
		"commentary", h.Commentator != nil)
	return h, nil
}

func loadModel(mc config.ModelConfig) (forecast.Model, error) {
	switch mc.Kind {
	case "drift":
		return forecast.DriftModel{Lookback: mc.Lookback}, nil
	case "mean_return", "":
		return forecast.MeanReturnModel{Lookback: mc.Lookback}, nil
	case "remote":
		if mc.URL == "" {
			return nil, fmt.Errorf("%w: remote model needs model.url", models.ErrCollaboratorUnavailable)
		}
		return forecast.NewRemoteModel(mc.URL, mc.Steps, seconds(mc.TimeoutSec)), nil
	default:
		return nil, fmt.Errorf("%w: unknown model kind %q", models.ErrCollaboratorUnavailable, mc.Kind)
	}
}

func loadClassifier(sc config.SentimentConfig) (sentiment.Classifier, error) {
	switch sc.Classifier {
	case "lexicon", "":
		return sentiment.NewLexicon(), nil
	case "huggingface":
		if sc.HFModel == "" {
			return nil, fmt.Errorf("%w: huggingface classifier needs sentiment.hf_model", models.ErrCollaboratorUnavailable)
		}
		return sentiment.NewHuggingFace(sc.HFURL, sc.HFModel, sc.HFToken, 20*time.Second), nil
	default:
		return nil, fmt.Errorf("%w: unknown classifier %q", models.ErrCollaboratorUnavailable, sc.Classifier)
	}
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n) * time.Second
}
