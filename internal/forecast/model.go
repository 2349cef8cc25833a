// Package forecast turns raw regressor output into a bounded, smoothed
// price path.
//
// A Model only sees a Window of scaled feature rows and returns values in
// the same scaled space. The Normalizer owns everything around that call:
// feature encoding, inverse scaling, the per-step volatility clamp, the
// exponential smoothing, and the rolling window for autoregressive models.
package forecast

import (
	"context"
	"errors"
)

var (
	// ErrShortPrediction is returned when a model yields fewer values than requested.
	ErrShortPrediction = errors.New("model returned too few values")
	// ErrInvalidPrediction is returned when a model yields a non-finite value.
	ErrInvalidPrediction = errors.New("model returned a non-finite value")
)

// Model is an opaque forecasting regressor. Implementations are read-only
// after construction and must be safe for concurrent use.
type Model interface {
	// Name identifies the model in logs and reports.
	Name() string
	// Autoregressive reports whether the model predicts one step per call
	// and must be re-run over a rolling window. Direct multi-step models
	// return every step from a single call.
	Autoregressive() bool
	// Predict returns at least steps scaled target values for the window.
	Predict(ctx context.Context, w Window, steps int) ([]float64, error)
}

// Window is a fixed-length sequence of scaled feature rows, oldest first.
// Column 0 is the prediction target.
type Window struct {
	Rows [][]float64
}

// Len returns the number of rows.
func (w Window) Len() int { return len(w.Rows) }

// Last returns the most recent row, or nil for an empty window.
func (w Window) Last() []float64 {
	if len(w.Rows) == 0 {
		return nil
	}
	return w.Rows[len(w.Rows)-1]
}

// Column returns column i of every row.
func (w Window) Column(i int) []float64 {
	out := make([]float64, 0, len(w.Rows))
	for _, r := range w.Rows {
		if i < len(r) {
			out = append(out, r[i])
		}
	}
	return out
}

// shift drops the oldest row and appends row, leaving w untouched.
func (w Window) shift(row []float64) Window {
	rows := make([][]float64, 0, len(w.Rows))
	if len(w.Rows) > 0 {
		rows = append(rows, w.Rows[1:]...)
	}
	rows = append(rows, row)
	return Window{Rows: rows}
}
