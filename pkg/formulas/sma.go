package formulas

import (
	"github.com/markcheno/go-talib"
)

// MovingAverage returns the simple moving average series of values over period.
// Element i of the result covers values[i : i+period], so the result has
// len(values)-period+1 entries. Nil when there are fewer values than period.
func MovingAverage(values []float64, period int) []float64 {
	if period < 1 || len(values) < period {
		return nil
	}
	if period == 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	sma := talib.Sma(values, period)
	if len(sma) < len(values) {
		return nil
	}

	out := make([]float64, 0, len(values)-period+1)
	for _, v := range sma[period-1:] {
		if isNaN(v) {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func isNaN(f float64) bool {
	return f != f
}
