package dividends

import (
	"github.com/aristath/divscout/pkg/formulas"
)

// Projector extrapolates future payouts from a history.
type Projector interface {
	Project(history []Observation, horizon int) ([]float64, error)
}

// Trend is a straight line fitted through payout amounts against their
// position in the history (0 for the oldest payout).
type Trend struct {
	formulas.Line
	Observations int `json:"observations"`
}

// Extrapolate evaluates the trend at the horizon positions following the
// fitted history, without rounding.
func (t Trend) Extrapolate(horizon int) []float64 {
	if horizon < 1 {
		return nil
	}
	out := make([]float64, horizon)
	for i := range out {
		out[i] = t.At(float64(t.Observations + i))
	}
	return out
}

// FitTrend fits an ordinary least squares line over the payout index.
func FitTrend(history []Observation) (Trend, error) {
	if len(history) < MinHistoryLength {
		return Trend{}, ErrInsufficientData
	}

	line, ok := formulas.FitIndexLine(Amounts(history))
	if !ok {
		return Trend{}, ErrInsufficientData
	}

	return Trend{Line: line, Observations: len(history)}, nil
}

// LinearProjector is the default Projector: index-based ordinary least squares.
type LinearProjector struct{}

// Project returns horizon predicted amounts for the payouts following history,
// rounded to cents.
func (LinearProjector) Project(history []Observation, horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrInvalidHorizon
	}

	trend, err := FitTrend(history)
	if err != nil {
		return nil, err
	}

	return formulas.Round2All(trend.Extrapolate(horizon)), nil
}

// Project runs the default LinearProjector.
func Project(history []Observation, horizon int) ([]float64, error) {
	return LinearProjector{}.Project(history, horizon)
}
