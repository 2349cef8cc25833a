package models

import "time"

// EvaluationPoint is one walk-forward step: the model's first-step change
// against the change that was realised the next bar.
type EvaluationPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"` // fractional change
	Actual    float64   `json:"actual"`    // fractional change
	Correct   bool      `json:"correct"`
	Strategy  float64   `json:"strategy"` // cumulative, fraction
	BuyHold   float64   `json:"buy_hold"` // cumulative, fraction
}

// EvaluationResult summarises a walk-forward evaluation of a forecast model.
type EvaluationResult struct {
	Ticker              string            `json:"ticker"`
	Model               string            `json:"model"`
	From                time.Time         `json:"from"`
	To                  time.Time         `json:"to"`
	Samples             int               `json:"samples"`
	Hits                int               `json:"hits"`
	DirectionalAccuracy float64           `json:"directional_accuracy"` // percent
	StrategyReturn      float64           `json:"strategy_return"`      // percent, summed daily changes
	BuyHoldReturn       float64           `json:"buy_hold_return"`      // percent, summed daily changes
	LongDays            int               `json:"long_days"`
	MaxDrawdownPct      float64           `json:"max_drawdown_pct"` // percentage points of the strategy curve
	SharpeRatio         float64           `json:"sharpe_ratio"`
	LongestHitStreak    int               `json:"longest_hit_streak"`
	LongestMissStreak   int               `json:"longest_miss_streak"`
	Curve               []EvaluationPoint `json:"curve"`
}

// ExcessReturn is the strategy return minus buy-and-hold, in percent.
func (r *EvaluationResult) ExcessReturn() float64 {
	return r.StrategyReturn - r.BuyHoldReturn
}
