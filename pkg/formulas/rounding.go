package formulas

import (
	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary or percentage value half away from zero to two
// decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Round2All applies Round2 to every element, returning a new slice.
func Round2All(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Round2(v)
	}
	return out
}
