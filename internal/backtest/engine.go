// Package backtest evaluates a forecast model walk-forward over historical
// candles: at each bar the model sees the preceding window and its
// first-step prediction is scored against the change realised next.
package backtest

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/seenimoa/neuroquant/internal/forecast"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
)

// Config holds the parameters of an evaluation run.
type Config struct {
	Window  int // bars fed to the model per prediction
	Holdout int // trailing bars never used as prediction points
	Target  forecast.Target
	Scaler  forecast.Scaler
}

// DefaultConfig mirrors the default forecast window and a five bar holdout.
func DefaultConfig() Config {
	return Config{
		Window:  60,
		Holdout: 5,
		Target:  forecast.TargetReturn,
		Scaler:  forecast.IdentityScaler{},
	}
}

// Engine runs walk-forward evaluations. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an evaluation engine, filling unset fields from
// DefaultConfig.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Window < 1 {
		cfg.Window = def.Window
	}
	if cfg.Holdout < 0 {
		cfg.Holdout = 0
	}
	if cfg.Target == "" {
		cfg.Target = def.Target
	}
	if cfg.Scaler == nil {
		cfg.Scaler = def.Scaler
	}
	return &Engine{cfg: cfg}
}

// Run evaluates m over bars, which must be ordered oldest first.
func (e *Engine) Run(ctx context.Context, m forecast.Model, ticker string, bars []models.OHLCV) (*models.EvaluationResult, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: forecast model", models.ErrCollaboratorUnavailable)
	}
	last := len(bars) - e.cfg.Holdout
	if last <= e.cfg.Window {
		return nil, fmt.Errorf("%w: need more than %d bars, got %d",
			models.ErrPrecondition, e.cfg.Window+e.cfg.Holdout, len(bars))
	}

	op := logger.StartOperation(ctx, "backtest.run",
		attribute.String("ticker", ticker),
		attribute.String("model", m.Name()),
		attribute.Int("bars", len(bars)))
	ctx = op.Context()

	rows := forecast.Encode(bars, e.cfg.Target)
	for i := range rows {
		rows[i] = e.cfg.Scaler.Transform(rows[i])
	}
	actuals := dailyChanges(bars)

	res := &models.EvaluationResult{
		Ticker: ticker,
		Model:  m.Name(),
		From:   bars[e.cfg.Window].Timestamp,
		To:     bars[last-1].Timestamp,
		Curve:  make([]models.EvaluationPoint, 0, last-e.cfg.Window),
	}

	var strategy, buyHold float64
	for i := e.cfg.Window; i < last; i++ {
		if err := ctx.Err(); err != nil {
			op.EndWithError(err)
			return nil, err
		}
		w := forecast.Window{Rows: rows[i-e.cfg.Window : i]}
		out, err := m.Predict(ctx, w, 1)
		if err != nil {
			op.EndWithError(err)
			return nil, fmt.Errorf("model %s at bar %d: %w", m.Name(), i, err)
		}
		if len(out) == 0 {
			op.EndWithError(forecast.ErrShortPrediction)
			return nil, fmt.Errorf("model %s at bar %d: %w", m.Name(), i, forecast.ErrShortPrediction)
		}

		pred := e.predictedChange(out[0], bars[i-1].Close)
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			op.EndWithError(forecast.ErrInvalidPrediction)
			return nil, fmt.Errorf("model %s at bar %d: %w", m.Name(), i, forecast.ErrInvalidPrediction)
		}

		actual := actuals[i]
		if pred > 0 {
			strategy += actual
			res.LongDays++
		}
		buyHold += actual

		p := models.EvaluationPoint{
			Date:      bars[i].Timestamp,
			Predicted: pred,
			Actual:    actual,
			Correct:   sign(pred) == sign(actual),
			Strategy:  strategy,
			BuyHold:   buyHold,
		}
		res.Curve = append(res.Curve, p)
	}

	ComputeMetrics(res)
	op.End("accuracy", res.DirectionalAccuracy, "strategy", res.StrategyReturn, "buy_hold", res.BuyHoldReturn)
	return res, nil
}

// predictedChange converts one model output into a fractional change from
// the last close the model saw.
func (e *Engine) predictedChange(out, lastClose float64) float64 {
	v := e.cfg.Scaler.InverseTarget(out)
	if e.cfg.Target == forecast.TargetReturn {
		return v
	}
	if lastClose == 0 {
		return math.NaN()
	}
	return v/lastClose - 1
}

// dailyChanges returns close-to-close fractional changes; the first is zero.
func dailyChanges(bars []models.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close != 0 {
			out[i] = bars[i].Close/bars[i-1].Close - 1
		}
	}
	return out
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
