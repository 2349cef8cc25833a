package forecast

import "context"

// DriftModel is an autoregressive baseline that extends the window by the
// mean first difference of its target column over the lookback.
type DriftModel struct {
	Lookback int
}

func (d DriftModel) Name() string        { return "drift" }
func (d DriftModel) Autoregressive() bool { return true }

func (d DriftModel) Predict(_ context.Context, w Window, _ int) ([]float64, error) {
	col := w.Column(0)
	if len(col) == 0 {
		return nil, ErrShortPrediction
	}
	tail := lastN(col, d.Lookback+1)
	var drift float64
	if len(tail) > 1 {
		drift = (tail[len(tail)-1] - tail[0]) / float64(len(tail)-1)
	}
	return []float64{col[len(col)-1] + drift}, nil
}

// MeanReturnModel is a direct multi-step baseline that predicts the mean of
// the target column over the lookback for every step. It is intended for
// return targets.
type MeanReturnModel struct {
	Lookback int
}

func (m MeanReturnModel) Name() string        { return "mean_return" }
func (m MeanReturnModel) Autoregressive() bool { return false }

func (m MeanReturnModel) Predict(_ context.Context, w Window, steps int) ([]float64, error) {
	tail := lastN(w.Column(0), m.Lookback)
	if len(tail) == 0 {
		return nil, ErrShortPrediction
	}
	var sum float64
	for _, v := range tail {
		sum += v
	}
	mean := sum / float64(len(tail))

	out := make([]float64, steps)
	for i := range out {
		out[i] = mean
	}
	return out, nil
}

func lastN(v []float64, n int) []float64 {
	if n <= 0 || n >= len(v) {
		return v
	}
	return v[len(v)-n:]
}
