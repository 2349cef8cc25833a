package engine

import (
	"github.com/seenimoa/neuroquant/internal/analysis/sentiment"
	"github.com/seenimoa/neuroquant/internal/config"
	"github.com/seenimoa/neuroquant/internal/decision"
	"github.com/seenimoa/neuroquant/internal/forecast"
)

// ForecastParams maps the forecast config section onto normalizer params.
func ForecastParams(fc config.ForecastConfig) forecast.Params {
	return forecast.Params{
		Horizon:   fc.Horizon,
		Window:    fc.Window,
		MaxChange: fc.MaxChange,
		Smoothing: fc.Smoothing,
		Feedback:  forecast.FeedbackMode(fc.Feedback),
		Target:    forecast.Target(fc.Target),
	}
}

// AggregatorConfig maps the sentiment config section.
func AggregatorConfig(sc config.SentimentConfig) sentiment.AggregatorConfig {
	return sentiment.AggregatorConfig{
		RiskThreshold:     sc.RiskThreshold,
		PositiveThreshold: sc.PositiveThreshold,
		NegativeThreshold: sc.NegativeThreshold,
		MaxTitleLen:       sc.MaxTitleLen,
		Workers:           sc.Workers,
	}
}

// Thresholds maps the decision config section.
func Thresholds(dc config.DecisionConfig) decision.Thresholds {
	return decision.Thresholds{
		RSIOverbought:           dc.RSIOverbought,
		SqueezeSentiment:        dc.SqueezeSentiment,
		StrongNegativeSentiment: dc.StrongNegativeSentiment,
		TrendChangePct:          dc.TrendThresholdPct,
		SupportiveSentiment:     dc.SupportiveSentiment,
	}
}
