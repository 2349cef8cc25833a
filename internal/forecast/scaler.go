package forecast

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scaler maps raw feature rows into the model's normalized space and maps
// the target column back. Implementations must be safe for concurrent use.
type Scaler interface {
	Transform(row []float64) []float64
	TransformTarget(v float64) float64
	InverseTarget(v float64) float64
}

// IdentityScaler leaves values untouched.
type IdentityScaler struct{}

func (IdentityScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}

func (IdentityScaler) TransformTarget(v float64) float64 { return v }
func (IdentityScaler) InverseTarget(v float64) float64   { return v }

// MinMaxScaler rescales every column to [0,1] using fitted bounds.
// Column 0 is the target. Columns beyond the fitted ones pass through.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// FitMinMax fits per-column bounds over rows.
func FitMinMax(rows [][]float64) *MinMaxScaler {
	s := &MinMaxScaler{}
	for _, r := range rows {
		for i, v := range r {
			if i >= len(s.Min) {
				s.Min = append(s.Min, v)
				s.Max = append(s.Max, v)
				continue
			}
			if v < s.Min[i] {
				s.Min[i] = v
			}
			if v > s.Max[i] {
				s.Max[i] = v
			}
		}
	}
	return s
}

// LoadMinMax reads fitted bounds from a JSON file of the form
// {"min": [...], "max": [...]}.
func LoadMinMax(path string) (*MinMaxScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scaler %s: %w", path, err)
	}
	var s MinMaxScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding scaler %s: %w", path, err)
	}
	if len(s.Min) == 0 || len(s.Min) != len(s.Max) {
		return nil, fmt.Errorf("scaler %s: min/max length mismatch (%d vs %d)", path, len(s.Min), len(s.Max))
	}
	return &s, nil
}

func (s *MinMaxScaler) scale(i int, v float64) float64 {
	if i >= len(s.Min) {
		return v
	}
	span := s.Max[i] - s.Min[i]
	if span == 0 {
		return 0
	}
	return (v - s.Min[i]) / span
}

func (s *MinMaxScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = s.scale(i, v)
	}
	return out
}

func (s *MinMaxScaler) TransformTarget(v float64) float64 { return s.scale(0, v) }

func (s *MinMaxScaler) InverseTarget(v float64) float64 {
	if len(s.Min) == 0 {
		return v
	}
	return v*(s.Max[0]-s.Min[0]) + s.Min[0]
}
