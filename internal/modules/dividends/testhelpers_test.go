package dividends

import (
	"time"
)

// historyOf builds a quarterly payout history starting Jan 2020.
func historyOf(amounts ...float64) []Observation {
	start := time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC)
	history := make([]Observation, len(amounts))
	for i, a := range amounts {
		history[i] = Observation{Date: start.AddDate(0, 3*i, 0), Amount: a}
	}
	return history
}
