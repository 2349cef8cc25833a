package backtest

import (
	"math"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Performance Metrics
// ════════════════════════════════════════════════════════════════════

// ComputeMetrics fills the summary fields of r from its curve in place.
func ComputeMetrics(r *models.EvaluationResult) {
	if r == nil {
		return
	}
	r.Samples = len(r.Curve)
	if r.Samples == 0 {
		return
	}

	computeAccuracy(r)
	computeReturns(r)
	computeDrawdown(r)
	computeSharpe(r)
	r.LongestHitStreak = longestStreak(r.Curve, true)
	r.LongestMissStreak = longestStreak(r.Curve, false)
}

func computeAccuracy(r *models.EvaluationResult) {
	hits := 0
	for _, p := range r.Curve {
		if p.Correct {
			hits++
		}
	}
	r.Hits = hits
	r.DirectionalAccuracy = float64(hits) / float64(len(r.Curve)) * 100
}

func computeReturns(r *models.EvaluationResult) {
	last := r.Curve[len(r.Curve)-1]
	r.StrategyReturn = last.Strategy * 100
	r.BuyHoldReturn = last.BuyHold * 100
}

// ────────────────────────────────────────────────────────────────────
// Maximum Drawdown of the cumulative strategy curve
// ────────────────────────────────────────────────────────────────────

func computeDrawdown(r *models.EvaluationResult) {
	peak := 0.0
	maxDD := 0.0
	for _, p := range r.Curve {
		if p.Strategy > peak {
			peak = p.Strategy
		}
		if dd := peak - p.Strategy; dd > maxDD {
			maxDD = dd
		}
	}
	r.MaxDrawdownPct = maxDD * 100
}

// ────────────────────────────────────────────────────────────────────
// Sharpe Ratio (annualized, zero risk-free rate)
// ────────────────────────────────────────────────────────────────────

func computeSharpe(r *models.EvaluationResult) {
	returns := strategyReturns(r.Curve)
	if len(returns) < 2 {
		return
	}
	if sd := stddev(returns); sd > 0 {
		r.SharpeRatio = (mean(returns) / sd) * math.Sqrt(252)
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// strategyReturns is the daily change captured by the long-when-up rule.
func strategyReturns(curve []models.EvaluationPoint) []float64 {
	out := make([]float64, len(curve))
	for i, p := range curve {
		if p.Predicted > 0 {
			out[i] = p.Actual
		}
	}
	return out
}

func longestStreak(curve []models.EvaluationPoint, correct bool) int {
	max, current := 0, 0
	for _, p := range curve {
		if p.Correct == correct {
			current++
			if current > max {
				max = current
			}
		} else {
			current = 0
		}
	}
	return max
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1)) // sample stddev
}
