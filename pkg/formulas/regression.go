package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Line is a fitted y = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitIndexLine fits an ordinary least squares line through (i, values[i]) for
// i = 0..len(values)-1. The bool is false when fewer than two points are given.
func FitIndexLine(values []float64) (Line, bool) {
	if len(values) < 2 {
		return Line{}, false
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	return Line{Intercept: alpha, Slope: beta}, true
}
