//go:build integration

package yahoo

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeClient_GetDividendYield_Integration(t *testing.T) {
	c := NewNativeClient(zerolog.New(nil).Level(zerolog.Disabled))

	yield, err := c.GetDividendYield("KO")
	require.NoError(t, err)
	require.NotNil(t, yield)
	assert.Greater(t, *yield, 0.0)
	assert.Less(t, *yield, 1.0, "yield is a fraction")
}

func TestNativeClient_GetProfile_Integration(t *testing.T) {
	c := NewNativeClient(zerolog.New(nil).Level(zerolog.Disabled))

	profile, err := c.GetProfile("KO")
	require.NoError(t, err)
	assert.Equal(t, "KO", profile.Symbol)
	assert.NotEmpty(t, profile.Name)
}
