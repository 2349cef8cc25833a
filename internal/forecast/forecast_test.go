package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// makeCandles builds n daily candles with close = base + trend*i.
func makeCandles(n int, base, trend float64) []models.OHLCV {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	candles := make([]models.OHLCV, n)
	for i := range candles {
		c := base + trend*float64(i)
		candles[i] = models.OHLCV{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return candles
}

// geometricCandles builds n candles growing by rate per bar.
func geometricCandles(n int, base, rate float64) []models.OHLCV {
	candles := makeCandles(n, base, 0)
	c := base
	for i := range candles {
		candles[i].Close = c
		c *= 1 + rate
	}
	return candles
}

type stubModel struct {
	ar    bool
	fn    func(w Window, steps int) ([]float64, error)
	calls int
	fed   []float64 // last target value of each window seen
}

func (s *stubModel) Name() string        { return "stub" }
func (s *stubModel) Autoregressive() bool { return s.ar }

func (s *stubModel) Predict(_ context.Context, w Window, steps int) ([]float64, error) {
	s.calls++
	s.fed = append(s.fed, w.Last()[0])
	return s.fn(w, steps)
}

func constModel(ar bool, v float64) *stubModel {
	return &stubModel{ar: ar, fn: func(_ Window, steps int) ([]float64, error) {
		out := make([]float64, steps)
		for i := range out {
			out[i] = v
		}
		return out, nil
	}}
}

func newNormalizer(t *testing.T, mutate func(p *Params)) *Normalizer {
	t.Helper()
	p := DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	n, err := NewNormalizer(p, nil)
	if err != nil {
		t.Fatalf("NewNormalizer error: %v", err)
	}
	return n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ── Fallback and preconditions ──

func TestForecastInsufficientHistory(t *testing.T) {
	n := newNormalizer(t, nil)
	candles := makeCandles(10, 100, 1)
	m := constModel(true, 0.5)

	path, err := n.Forecast(context.Background(), candles, m)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if len(path) != 5 {
		t.Fatalf("len(path) = %d, want 5", len(path))
	}
	if !path.IsFlat() || path[0] != 109 {
		t.Errorf("expected flat path at 109, got %v", path)
	}
	if m.calls != 0 {
		t.Errorf("model should not be called, got %d calls", m.calls)
	}
}

func TestForecastPreconditions(t *testing.T) {
	n := newNormalizer(t, nil)

	if _, err := n.Forecast(context.Background(), nil, constModel(true, 0)); !errors.Is(err, models.ErrPrecondition) {
		t.Errorf("empty history: got %v, want ErrPrecondition", err)
	}

	candles := makeCandles(70, 100, 0)
	candles[len(candles)-1].Close = 0
	if _, err := n.Forecast(context.Background(), candles, constModel(true, 0)); !errors.Is(err, models.ErrPrecondition) {
		t.Errorf("zero price: got %v, want ErrPrecondition", err)
	}

	if _, err := n.Forecast(context.Background(), makeCandles(70, 100, 0), nil); !errors.Is(err, models.ErrCollaboratorUnavailable) {
		t.Errorf("nil model: got %v, want ErrCollaboratorUnavailable", err)
	}
}

func TestNewNormalizerRejectsBadParams(t *testing.T) {
	bad := []func(p *Params){
		func(p *Params) { p.Horizon = 0 },
		func(p *Params) { p.MaxChange = 0 },
		func(p *Params) { p.Smoothing = 1 },
		func(p *Params) { p.Feedback = "both" },
		func(p *Params) { p.Target = "volume" },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(&p)
		if _, err := NewNormalizer(p, nil); !errors.Is(err, models.ErrPrecondition) {
			t.Errorf("case %d: got %v, want ErrPrecondition", i, err)
		}
	}
}

// ── Clamp, smoothing, positivity ──

func TestStepClampAndSmoothing(t *testing.T) {
	n := newNormalizer(t, nil)

	cand, smooth := n.Step(100, 150)
	if !approx(cand, 102) || !approx(smooth, 100.6) {
		t.Errorf("Step(100,150) = (%f,%f), want (102,100.6)", cand, smooth)
	}

	cand, smooth = n.Step(100, 101)
	if !approx(cand, 101) || !approx(smooth, 100.3) {
		t.Errorf("Step(100,101) = (%f,%f), want (101,100.3)", cand, smooth)
	}

	cand, _ = n.Step(100, -1e9)
	if !approx(cand, 98) {
		t.Errorf("Step(100,-1e9) candidate = %f, want 98", cand)
	}
}

func TestForecastClampBound(t *testing.T) {
	n := newNormalizer(t, func(p *Params) { p.Target = TargetPrice })
	candles := makeCandles(80, 100, 0.5)
	last := candles[len(candles)-1].Close

	path, err := n.Forecast(context.Background(), candles, constModel(true, 1e6))
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	prev := last
	for i, p := range path {
		// smoothed step = 0.3 * clamped 2%
		if !approx(p/prev-1, 0.006) {
			t.Errorf("step %d: change %f, want 0.006", i, p/prev-1)
		}
		prev = p
	}
}

func TestForecastPositivity(t *testing.T) {
	n := newNormalizer(t, func(p *Params) { p.Target = TargetPrice })
	path, err := n.Forecast(context.Background(), makeCandles(80, 100, 0), constModel(true, -1e12))
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	prev := 100.0
	for i, p := range path {
		if p <= 0 {
			t.Fatalf("step %d: non-positive price %f", i, p)
		}
		if p >= prev {
			t.Errorf("step %d: expected decline, %f >= %f", i, p, prev)
		}
		prev = p
	}
}

// ── Model variants ──

func TestForecastReturnTargetDirect(t *testing.T) {
	n := newNormalizer(t, nil)
	candles := geometricCandles(80, 100, 0.01)
	last := candles[len(candles)-1].Close

	path, err := n.Forecast(context.Background(), candles, MeanReturnModel{Lookback: 10})
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	// +1% per step is under the clamp, smoothed to +0.3%
	want := last
	for i, p := range path {
		want *= 1.003
		if math.Abs(p-want) > 1e-6 {
			t.Errorf("step %d: got %f, want %f", i, p, want)
		}
	}
}

func TestForecastDirectShortPrediction(t *testing.T) {
	n := newNormalizer(t, nil)
	m := &stubModel{fn: func(_ Window, _ int) ([]float64, error) { return []float64{0.01, 0.01}, nil }}
	_, err := n.Forecast(context.Background(), makeCandles(80, 100, 1), m)
	if !errors.Is(err, ErrShortPrediction) {
		t.Errorf("got %v, want ErrShortPrediction", err)
	}
	if m.calls != 1 {
		t.Errorf("direct model should be called once, got %d", m.calls)
	}
}

func TestForecastAutoregressiveCallsPerStep(t *testing.T) {
	n := newNormalizer(t, func(p *Params) { p.Horizon = 7 })
	m := constModel(true, 0.001)
	path, err := n.Forecast(context.Background(), makeCandles(80, 100, 1), m)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if len(path) != 7 || m.calls != 7 {
		t.Errorf("len(path)=%d calls=%d, want 7 and 7", len(path), m.calls)
	}
}

func TestForecastNonFinite(t *testing.T) {
	n := newNormalizer(t, nil)
	_, err := n.Forecast(context.Background(), makeCandles(80, 100, 1), constModel(true, math.NaN()))
	if !errors.Is(err, ErrInvalidPrediction) {
		t.Errorf("got %v, want ErrInvalidPrediction", err)
	}
}

func TestForecastModelError(t *testing.T) {
	n := newNormalizer(t, nil)
	boom := errors.New("boom")
	m := &stubModel{ar: true, fn: func(_ Window, _ int) ([]float64, error) { return nil, boom }}
	if _, err := n.Forecast(context.Background(), makeCandles(80, 100, 1), m); !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}

// ── Feedback modes ──

func TestFeedbackModes(t *testing.T) {
	candles := makeCandles(80, 100, 0)

	raw := newNormalizer(t, func(p *Params) { p.Target = TargetPrice; p.Feedback = FeedbackRaw })
	m := constModel(true, 150)
	path, err := raw.Forecast(context.Background(), candles, m)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	for i := 1; i < len(m.fed); i++ {
		if m.fed[i] != 150 {
			t.Errorf("raw feedback step %d: fed %f, want 150", i, m.fed[i])
		}
	}

	smoothed := newNormalizer(t, func(p *Params) { p.Target = TargetPrice })
	m = constModel(true, 150)
	path, err = smoothed.Forecast(context.Background(), candles, m)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	for i := 1; i < len(m.fed); i++ {
		if !approx(m.fed[i], path[i-1]) {
			t.Errorf("smoothed feedback step %d: fed %f, want %f", i, m.fed[i], path[i-1])
		}
	}
}

func TestEncode(t *testing.T) {
	candles := makeCandles(3, 100, 10)
	rows := Encode(candles, TargetReturn)
	if rows[0][0] != 0 || !approx(rows[1][0], 0.1) {
		t.Errorf("return rows = %v", rows)
	}
	rows = Encode(candles, TargetPrice)
	if len(rows[2]) != 5 || rows[2][0] != 120 || rows[2][4] != 1_000_000 {
		t.Errorf("price row = %v", rows[2])
	}
}

// ── Built-in models ──

func TestDriftModel(t *testing.T) {
	w := Window{Rows: [][]float64{{1}, {2}, {3}, {5}}}
	out, err := DriftModel{Lookback: 2}.Predict(context.Background(), w, 1)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	// tail [2,3,5] → drift 1.5
	if !approx(out[0], 6.5) {
		t.Errorf("Predict = %f, want 6.5", out[0])
	}
	if _, err := (DriftModel{}).Predict(context.Background(), Window{}, 1); err == nil {
		t.Error("expected error on empty window")
	}
}

// ── Scalers ──

func TestMinMaxScaler(t *testing.T) {
	s := FitMinMax([][]float64{{10, 0}, {20, 5}, {30, 10}})
	row := s.Transform([]float64{20, 10, 7})
	if !approx(row[0], 0.5) || !approx(row[1], 1) || row[2] != 7 {
		t.Errorf("Transform = %v", row)
	}
	if !approx(s.InverseTarget(0.25), 15) {
		t.Errorf("InverseTarget(0.25) = %f, want 15", s.InverseTarget(0.25))
	}
	if !approx(s.InverseTarget(s.TransformTarget(27)), 27) {
		t.Error("target round trip failed")
	}
}

func TestLoadMinMax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")
	if err := os.WriteFile(path, []byte(`{"min":[-0.1],"max":[0.1]}`), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	s, err := LoadMinMax(path)
	if err != nil {
		t.Fatalf("LoadMinMax error: %v", err)
	}
	if !approx(s.InverseTarget(0.5), 0) {
		t.Errorf("InverseTarget(0.5) = %f, want 0", s.InverseTarget(0.5))
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"min":[1,2],"max":[3]}`), 0644)
	if _, err := LoadMinMax(bad); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestForecastWithMinMaxScaler(t *testing.T) {
	scaler := &MinMaxScaler{Min: []float64{-0.1}, Max: []float64{0.1}}
	n, err := NewNormalizer(DefaultParams(), scaler)
	if err != nil {
		t.Fatalf("NewNormalizer error: %v", err)
	}
	candles := makeCandles(80, 100, 0)
	// 0.55 scaled → +0.01 raw return
	path, err := n.Forecast(context.Background(), candles, constModel(false, 0.55))
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if !approx(path[0], 100.3) {
		t.Errorf("path[0] = %f, want 100.3", path[0])
	}
}

// ── Remote model ──

func TestRemoteModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Instances) != 1 || len(req.Instances[0]) != 60 {
			http.Error(w, `{"error":"bad shape"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predictions":[[0.01,0.02,0.0,-0.01,0.005]]}`))
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, 5, 5*time.Second)
	if m.Autoregressive() {
		t.Error("5-step remote model should be direct")
	}
	n := newNormalizer(t, nil)
	path, err := n.Forecast(context.Background(), makeCandles(80, 100, 0), m)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if len(path) != 5 || !approx(path[0], 100.3) {
		t.Errorf("path = %v", path)
	}
}

func TestRemoteModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, 1, time.Second)
	if _, err := m.Predict(context.Background(), Window{Rows: [][]float64{{0}}}, 1); err == nil {
		t.Error("expected error from failing model server")
	}
}

func TestTradingDays(t *testing.T) {
	candles := makeCandles(5, 100, 0) // last bar 2026-01-09, a Friday
	days := TradingDays(candles, 2, false)
	if len(days) != 2 || days[0].Weekday() != time.Monday || days[1].Weekday() != time.Tuesday {
		t.Errorf("TradingDays = %v", days)
	}
	days = TradingDays(candles, 2, true)
	if len(days) != 2 || days[0].Weekday() != time.Saturday || days[1].Weekday() != time.Sunday {
		t.Errorf("TradingDays every day = %v", days)
	}
}
