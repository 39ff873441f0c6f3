package ml

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

var ErrEmptyInput = errors.New("ml: empty input")

// Scaler standardizes each column to zero mean and unit population variance.
// Columns with zero variance keep scale 1 so they pass through centered.
type Scaler struct {
	mean  []float64
	scale []float64
}

// FitScaler learns per-column mean and scale from x. All rows must share one width.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	width := len(x[0])
	s := &Scaler{mean: make([]float64, width), scale: make([]float64, width)}

	col := make([]float64, len(x))
	for j := 0; j < width; j++ {
		for i, row := range x {
			if len(row) != width {
				return nil, fmt.Errorf("ml: row %d has %d columns, want %d", i, len(row), width)
			}
			col[i] = row[j]
		}
		m, v := stat.PopMeanVariance(col, nil)
		s.mean[j] = m
		if sd := math.Sqrt(v); sd > 0 && !math.IsNaN(sd) {
			s.scale[j] = sd
		} else {
			s.scale[j] = 1
		}
	}
	return s, nil
}

func (s *Scaler) Width() int { return len(s.mean) }

func (s *Scaler) Mean() []float64  { return slices.Clone(s.mean) }
func (s *Scaler) Scale() []float64 { return slices.Clone(s.scale) }

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j >= len(s.mean) {
			out[j] = v
			continue
		}
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out
}

func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
