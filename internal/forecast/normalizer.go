package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
)

// Target selects what the model's column 0 represents.
type Target string

const (
	// TargetPrice rows are [close, open, high, low, volume]; the model
	// predicts the next close.
	TargetPrice Target = "price"
	// TargetReturn rows are [fractional close-to-close change]; the model
	// predicts the next change.
	TargetReturn Target = "return"
)

// FeedbackMode selects what an autoregressive model sees for the step it
// just predicted.
type FeedbackMode string

const (
	FeedbackSmoothed FeedbackMode = "smoothed"
	FeedbackRaw      FeedbackMode = "raw"
)

// Params configures the post-processing pipeline.
type Params struct {
	Horizon   int
	Window    int
	MaxChange float64 // per-step clamp on |change|, as a fraction
	Smoothing float64 // weight of the previous price in the blend
	Feedback  FeedbackMode
	Target    Target
}

// DefaultParams returns a five-step horizon over a 60-bar window with a 2%
// clamp and 0.7/0.3 smoothing.
func DefaultParams() Params {
	return Params{
		Horizon:   5,
		Window:    60,
		MaxChange: 0.02,
		Smoothing: 0.7,
		Feedback:  FeedbackSmoothed,
		Target:    TargetReturn,
	}
}

func (p Params) validate() error {
	switch {
	case p.Horizon < 1:
		return fmt.Errorf("%w: horizon %d", models.ErrPrecondition, p.Horizon)
	case p.Window < 1:
		return fmt.Errorf("%w: window %d", models.ErrPrecondition, p.Window)
	case p.MaxChange <= 0 || p.MaxChange >= 1:
		return fmt.Errorf("%w: max change %g", models.ErrPrecondition, p.MaxChange)
	case p.Smoothing < 0 || p.Smoothing >= 1:
		return fmt.Errorf("%w: smoothing %g", models.ErrPrecondition, p.Smoothing)
	}
	if p.Feedback != FeedbackSmoothed && p.Feedback != FeedbackRaw {
		return fmt.Errorf("%w: feedback mode %q", models.ErrPrecondition, p.Feedback)
	}
	if p.Target != TargetPrice && p.Target != TargetReturn {
		return fmt.Errorf("%w: target %q", models.ErrPrecondition, p.Target)
	}
	return nil
}

// Normalizer drives a Model and post-processes its output. It holds no
// per-request state and is safe for concurrent use.
type Normalizer struct {
	params Params
	scaler Scaler
}

// NewNormalizer validates params. A nil scaler means identity.
func NewNormalizer(p Params, scaler Scaler) (*Normalizer, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if scaler == nil {
		scaler = IdentityScaler{}
	}
	return &Normalizer{params: p, scaler: scaler}, nil
}

// Params returns the configured parameters.
func (n *Normalizer) Params() Params { return n.params }

// Forecast returns exactly Horizon strictly positive prices following the
// last candle. With fewer than Window candles it returns the last close
// repeated, which callers can detect with PricePath.IsFlat.
func (n *Normalizer) Forecast(ctx context.Context, candles []models.OHLCV, m Model) (models.PricePath, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: empty price history", models.ErrPrecondition)
	}
	current := candles[len(candles)-1].Close
	if !(current > 0) {
		return nil, fmt.Errorf("%w: current price %g must be positive", models.ErrPrecondition, current)
	}

	if len(candles) < n.params.Window {
		logger.Warn(ctx, "insufficient history, emitting flat forecast",
			"bars", len(candles), "window", n.params.Window)
		return flatPath(current, n.params.Horizon), nil
	}
	if m == nil {
		return nil, fmt.Errorf("%w: forecast model", models.ErrCollaboratorUnavailable)
	}

	op := logger.StartOperation(ctx, "forecast.normalize",
		attribute.String("model", m.Name()),
		attribute.Int("horizon", n.params.Horizon))
	ctx = op.Context()

	path, err := n.run(ctx, candles, m, current)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("last", path[len(path)-1])
	return path, nil
}

func (n *Normalizer) run(ctx context.Context, candles []models.OHLCV, m Model, current float64) (models.PricePath, error) {
	steps := n.params.Horizon
	w := n.window(candles)

	var direct []float64
	if !m.Autoregressive() {
		out, err := m.Predict(ctx, w, steps)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name(), err)
		}
		if len(out) < steps {
			return nil, fmt.Errorf("model %s: %w: got %d, want %d", m.Name(), ErrShortPrediction, len(out), steps)
		}
		direct = out
	}

	path := make(models.PricePath, 0, steps)
	for i := 0; i < steps; i++ {
		var out float64
		if direct != nil {
			out = direct[i]
		} else {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			vals, err := m.Predict(ctx, w, 1)
			if err != nil {
				return nil, fmt.Errorf("model %s step %d: %w", m.Name(), i, err)
			}
			if len(vals) == 0 {
				return nil, fmt.Errorf("model %s step %d: %w", m.Name(), i, ErrShortPrediction)
			}
			out = vals[0]
		}

		raw := n.rawPrice(out, current)
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return nil, fmt.Errorf("model %s step %d: %w", m.Name(), i, ErrInvalidPrediction)
		}
		_, next := n.Step(current, raw)
		path = append(path, next)

		if direct == nil {
			w = w.shift(n.feedbackRow(w.Last(), out, next, current))
		}
		current = next
	}
	return path, nil
}

// Step applies the volatility clamp and smoothing to one raw prediction.
// It returns the clamped candidate and the smoothed price that is emitted.
func (n *Normalizer) Step(current, raw float64) (candidate, smoothed float64) {
	change := (raw - current) / current
	if change > n.params.MaxChange {
		change = n.params.MaxChange
	} else if change < -n.params.MaxChange {
		change = -n.params.MaxChange
	}
	candidate = current * (1 + change)
	smoothed = n.params.Smoothing*current + (1-n.params.Smoothing)*candidate
	return candidate, smoothed
}

func (n *Normalizer) rawPrice(out, current float64) float64 {
	v := n.scaler.InverseTarget(out)
	if n.params.Target == TargetReturn {
		return current * (1 + v)
	}
	return v
}

func (n *Normalizer) feedbackRow(last []float64, out, smoothed, prev float64) []float64 {
	row := make([]float64, len(last))
	copy(row, last)
	if len(row) == 0 {
		row = []float64{0}
	}
	if n.params.Feedback == FeedbackRaw {
		row[0] = out
		return row
	}
	if n.params.Target == TargetReturn {
		row[0] = n.scaler.TransformTarget(smoothed/prev - 1)
	} else {
		row[0] = n.scaler.TransformTarget(smoothed)
	}
	return row
}

// window encodes the most recent Window candles as scaled feature rows.
func (n *Normalizer) window(candles []models.OHLCV) Window {
	rows := Encode(candles, n.params.Target)
	rows = rows[len(rows)-n.params.Window:]
	scaled := make([][]float64, len(rows))
	for i, r := range rows {
		scaled[i] = n.scaler.Transform(r)
	}
	return Window{Rows: scaled}
}

// Encode converts candles into raw feature rows for target. For return
// targets the first row's change is zero.
func Encode(candles []models.OHLCV, target Target) [][]float64 {
	rows := make([][]float64, len(candles))
	for i, c := range candles {
		if target == TargetReturn {
			var pct float64
			if i > 0 && candles[i-1].Close != 0 {
				pct = c.Close/candles[i-1].Close - 1
			}
			rows[i] = []float64{pct}
			continue
		}
		rows[i] = []float64{c.Close, c.Open, c.High, c.Low, float64(c.Volume)}
	}
	return rows
}

// TradingDays returns the forecast dates: the n weekdays after the last
// candle, or the n calendar days when everyDay is set (crypto pairs).
func TradingDays(candles []models.OHLCV, n int, everyDay bool) []time.Time {
	from := time.Now()
	if len(candles) > 0 {
		from = candles[len(candles)-1].Timestamp
	}
	if everyDay {
		return utils.NextDays(from, n)
	}
	return utils.NextTradingDays(from, n)
}

func flatPath(price float64, n int) models.PricePath {
	p := make(models.PricePath, n)
	for i := range p {
		p[i] = price
	}
	return p
}
