package dividends

import (
	"github.com/aristath/divscout/pkg/formulas"
)

// ComputeStats summarises a payout history. An empty history gives zero Stats.
func ComputeStats(history []Observation) Stats {
	if len(history) == 0 {
		return Stats{}
	}

	amounts := Amounts(history)
	first := history[0].Date
	last := history[len(history)-1].Date

	return Stats{
		Count:     len(history),
		Mean:      formulas.Round2(formulas.Mean(amounts)),
		StdDev:    formulas.Round2(formulas.StdDev(amounts)),
		First:     amounts[0],
		Last:      amounts[len(amounts)-1],
		FirstDate: &first,
		LastDate:  &last,
	}
}
