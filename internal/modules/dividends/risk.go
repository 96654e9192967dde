package dividends

// ClassifyRisk judges whether a stock is at risk of cutting its dividend from
// the last five payouts of a chronologically ordered history.
//
// The two checks are ordered: a payout below the one five payouts ago is High
// even when the latest step was flat or up; only otherwise does a dip versus
// the previous payout yield Medium.
func ClassifyRisk(history []Observation) RiskLevel {
	if len(history) < MinHistoryLength {
		return RiskInsufficientData
	}

	window := history[len(history)-MinHistoryLength:]
	oldest := window[0].Amount
	previous := window[len(window)-2].Amount
	latest := window[len(window)-1].Amount

	if latest < oldest {
		return RiskHigh
	}
	if latest < previous {
		return RiskMedium
	}
	return RiskLow
}
