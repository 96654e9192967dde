package dividends

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    RiskLevel
	}{
		{"flat", []float64{10, 10, 10, 10, 10}, RiskLow},
		{"strictly decreasing", []float64{10, 9, 8, 7, 6}, RiskHigh},
		{"rebound still below window start", []float64{10, 9, 8, 7, 8}, RiskHigh},
		{"latest dip above window start", []float64{5, 5, 5, 8, 7}, RiskMedium},
		{"latest raise", []float64{5, 5, 5, 5, 6}, RiskLow},
		{"latest equals window start", []float64{5, 4, 3, 2, 5}, RiskLow},
		{"only the last five payouts count", []float64{100, 50, 1, 1, 1, 1, 1}, RiskLow},
		{"older cut outside the window", []float64{9, 2, 2, 3, 3, 4, 4}, RiskLow},
		{"all zero", []float64{0, 0, 0, 0, 0}, RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(historyOf(tt.amounts...)))
		})
	}
}

func TestClassifyRisk_ShortHistories(t *testing.T) {
	for n := 0; n < MinHistoryLength; n++ {
		amounts := make([]float64, n)
		for i := range amounts {
			amounts[i] = float64(10 - i)
		}
		level := ClassifyRisk(historyOf(amounts...))
		assert.Equal(t, RiskInsufficientData, level, "length %d", n)
		assert.False(t, level.Known())
	}

	assert.Equal(t, RiskInsufficientData, ClassifyRisk(nil))
}

func TestRiskLevel_Known(t *testing.T) {
	assert.True(t, RiskLow.Known())
	assert.True(t, RiskMedium.Known())
	assert.True(t, RiskHigh.Known())
	assert.False(t, RiskInsufficientData.Known())
}
