package models

import (
	"errors"
	"time"
)

var (
	// ErrPrecondition is returned when an input violates an invariant
	// required by the engine, such as a non-positive current price.
	ErrPrecondition = errors.New("precondition violation")
	// ErrCollaboratorUnavailable is returned when a required model or
	// classifier handle is missing.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// PricePath is an ordered sequence of forecast prices, one per step.
type PricePath []float64

// ChangePct returns the percentage change from the first to the last step.
func (p PricePath) ChangePct() float64 {
	if len(p) < 2 || p[0] == 0 {
		return 0
	}
	return (p[len(p)-1] - p[0]) / p[0] * 100
}

// IsFlat reports whether every step carries the same price, which is how
// the insufficient-history fallback looks.
func (p PricePath) IsFlat() bool {
	for i := 1; i < len(p); i++ {
		if p[i] != p[0] {
			return false
		}
	}
	return true
}

// Verdict is the final recommendation of the decision synthesizer.
type Verdict string

const (
	VerdictStrongBuy  Verdict = "STRONG_BUY"
	VerdictBuy        Verdict = "BUY"
	VerdictWatch      Verdict = "WATCH"
	VerdictSell       Verdict = "SELL"
	VerdictStrongSell Verdict = "STRONG_SELL"
	VerdictRisky      Verdict = "RISKY"
	VerdictAvoid      Verdict = "AVOID"
)

// Display returns the human-facing name of the verdict.
func (v Verdict) Display() string {
	switch v {
	case VerdictStrongBuy:
		return "Strong Buy"
	case VerdictBuy:
		return "Buy (cautious)"
	case VerdictWatch:
		return "Watch / Neutral"
	case VerdictSell:
		return "Sell (reaction possible)"
	case VerdictStrongSell:
		return "Strong Sell"
	case VerdictRisky:
		return "Risky / Overbought"
	case VerdictAvoid:
		return "Sell / Avoid"
	default:
		return string(v)
	}
}

// Severity is the presentation hint attached to a decision.
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityBlue   Severity = "blue"
	SeverityGray   Severity = "gray"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
)

// Decision is the outcome of the rule chain.
type Decision struct {
	Verdict   Verdict  `json:"verdict"`
	Severity  Severity `json:"severity"`
	Rationale string   `json:"rationale"`
	Rule      string   `json:"rule"` // name of the rule that fired
}

// AnalysisReport is everything produced for a single analysis request.
type AnalysisReport struct {
	ID            string              `json:"id"`
	Ticker        string              `json:"ticker"`
	CurrentPrice  float64             `json:"current_price"`
	Volume        int64               `json:"volume"` // of the last bar
	Indicators    TechnicalIndicators `json:"indicators"`
	Forecast      PricePath           `json:"forecast"`
	ForecastDates []time.Time         `json:"forecast_dates"`
	Degenerate    bool                `json:"degenerate"` // flat fallback path, not a model forecast
	Sentiment     SentimentSummary    `json:"sentiment"`
	News          []NewsItem          `json:"news"`
	Decision      Decision            `json:"decision"`
	Commentary    string              `json:"commentary,omitempty"`
	Duration      time.Duration       `json:"duration_ns"`
	Timestamp     time.Time           `json:"timestamp"`
}
