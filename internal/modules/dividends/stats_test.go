package dividends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	history := historyOf(0.5, 0.5, 0.55, 0.6)

	stats := ComputeStats(history)

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 0.54, stats.Mean)
	assert.Equal(t, 0.05, stats.StdDev)
	assert.Equal(t, 0.5, stats.First)
	assert.Equal(t, 0.6, stats.Last)
	require.NotNil(t, stats.FirstDate)
	require.NotNil(t, stats.LastDate)
	assert.True(t, stats.FirstDate.Before(*stats.LastDate))
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))
}
